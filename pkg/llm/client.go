package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const generationSystemMessage = "You are a T-SQL expert for a retail data warehouse. " +
	"Answer with a single SQL Server query followed by a one-line explanation."

// Client generates SQL through any OpenAI-compatible chat completion
// endpoint (OpenAI itself, vLLM, Ollama's compat API, LM Studio).
type Client struct {
	client   *openai.Client
	name     string
	endpoint string
	model    string
	timeout  time.Duration
	logger   *zap.Logger
}

// ClientConfig holds configuration for creating a generation client.
type ClientConfig struct {
	Name     string        // Backend name for logs and cache keys
	Endpoint string        // Base URL, e.g. "https://api.openai.com/v1"
	Model    string        // Model name, e.g. "gpt-4o-mini"
	APIKey   string        // Optional for local endpoints
	Timeout  time.Duration // Per-request deadline; zero means no extra deadline
}

// NewClient creates a new OpenAI-compatible generation client.
func NewClient(cfg *ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	name := cfg.Name
	if name == "" {
		name = cfg.Model
	}

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		name:     name,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   logger.Named("llm").With(zap.String("backend", name)),
	}, nil
}

// GenerateSQL sends the prompt and returns the raw model output.
func (c *Client) GenerateSQL(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("generation request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generationSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Error("generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err, c.name)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeEmpty, "no choices in response", true, nil)
	}

	content := resp.Choices[0].Message.Content

	c.logger.Info("generation request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// Name returns the backend name.
func (c *Client) Name() string {
	return c.name
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)
