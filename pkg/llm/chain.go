package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
)

// ChainResult is the outcome of a successful chain walk.
type ChainResult struct {
	Content string
	Backend string
	Cached  bool
}

// Chain walks an ordered list of backends until one produces a non-empty
// response. Order encodes preference: local models first, hosted providers
// as fallback. A backend that errors, times out, or returns an empty
// response is skipped and the walk continues; only when every backend has
// failed does the chain give up.
type Chain struct {
	backends []Backend
	breakers []*CircuitBreaker
	cache    *ResponseCache
	logger   *zap.Logger
}

// NewChain creates a fallback chain over the given backends. The cache is
// optional; pass nil to disable response caching.
func NewChain(backends []Backend, cache *ResponseCache, logger *zap.Logger) *Chain {
	breakers := make([]*CircuitBreaker, len(backends))
	for i := range backends {
		breakers[i] = NewCircuitBreaker(DefaultCircuitBreakerConfig())
	}
	return &Chain{
		backends: backends,
		breakers: breakers,
		cache:    cache,
		logger:   logger.Named("llm_chain"),
	}
}

// Head returns the first backend in the chain, or nil when the chain is
// empty. It is the default correction backend when no dedicated one is
// configured.
func (c *Chain) Head() Backend {
	if len(c.backends) == 0 {
		return nil
	}
	return c.backends[0]
}

// Generate walks the chain for the prompt. It returns the first non-empty
// response, or apperrors.ErrBackendsExhausted wrapping the last failure when
// every backend has been tried.
func (c *Chain) Generate(ctx context.Context, prompt string) (*ChainResult, error) {
	var lastErr error

	for i, backend := range c.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := backend.Name()

		if c.cache != nil {
			if cached, ok := c.cache.Get(name, prompt); ok {
				c.logger.Debug("cache hit", zap.String("backend", name))
				return &ChainResult{Content: cached, Backend: name, Cached: true}, nil
			}
		}

		if ok, err := c.breakers[i].Allow(); !ok {
			c.logger.Warn("skipping backend, circuit open",
				zap.String("backend", name),
				zap.Error(err))
			lastErr = err
			continue
		}

		content, err := backend.GenerateSQL(ctx, prompt)
		if err != nil {
			c.breakers[i].RecordFailure()
			c.logger.Warn("backend failed, trying next",
				zap.String("backend", name),
				zap.Error(err))
			lastErr = err
			continue
		}
		if strings.TrimSpace(content) == "" {
			c.breakers[i].RecordFailure()
			c.logger.Warn("backend returned empty response, trying next",
				zap.String("backend", name))
			lastErr = NewError(ErrorTypeEmpty, "empty response", true, nil)
			continue
		}

		c.breakers[i].RecordSuccess()
		if c.cache != nil {
			c.cache.Put(name, prompt, content)
		}
		return &ChainResult{Content: content, Backend: name}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBackendsExhausted, lastErr)
	}
	return nil, apperrors.ErrBackendsExhausted
}
