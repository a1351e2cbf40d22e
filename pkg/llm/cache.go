package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ResponseCache memoizes raw backend output keyed by backend name and prompt
// text. Generation is deterministic enough at low temperature that repeating
// an identical prompt against the same backend is wasted latency.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewResponseCache creates an empty response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]string)}
}

// Get returns the cached response for a backend/prompt pair.
func (c *ResponseCache) Get(backend, prompt string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey(backend, prompt)]
	return v, ok
}

// Put stores a response. Empty responses are never cached; an empty reply is
// a transient failure, not an answer.
func (c *ResponseCache) Put(backend, prompt, response string) {
	if response == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(backend, prompt)] = response
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(backend, prompt string) string {
	h := sha256.Sum256([]byte(backend + "\x00" + prompt))
	return hex.EncodeToString(h[:])
}
