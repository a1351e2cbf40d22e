package llm

import (
	"context"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const anthropicMaxTokens = 1024

// AnthropicBackend generates SQL through the Anthropic Messages API. It is
// used as the dedicated correction backend when configured, and can also sit
// in the regular fallback chain.
type AnthropicBackend struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// AnthropicConfig holds configuration for the Anthropic backend.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewAnthropicBackend creates an Anthropic-backed generation client.
func NewAnthropicBackend(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "anthropic api key is required", false, nil)
	}
	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaude3Dot5HaikuLatest)
	}
	return &AnthropicBackend{
		client:  anthropic.NewClient(cfg.APIKey),
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger.Named("llm").With(zap.String("backend", "anthropic")),
	}, nil
}

// GenerateSQL sends the prompt and returns the raw model output.
func (a *AnthropicBackend) GenerateSQL(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		System:    generationSystemMessage,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		a.logger.Error("generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, a.Name())
	}

	if len(resp.Content) == 0 {
		return "", NewError(ErrorTypeEmpty, "no content in response", true, nil)
	}

	content := resp.Content[0].GetText()

	a.logger.Info("generation request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// Name returns the backend name.
func (a *AnthropicBackend) Name() string {
	return "anthropic"
}

var _ Backend = (*AnthropicBackend)(nil)
