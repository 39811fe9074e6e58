package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// defaultTimeout bounds a completion when no timeout is configured.
const defaultTimeout = 60 * time.Second

// Sentinel errors for model operations.
var (
	// ErrNotConfigured indicates required provider settings are missing.
	ErrNotConfigured = errors.New("llm: not configured")

	// ErrCompletionFailed indicates the provider call failed.
	ErrCompletionFailed = errors.New("llm: completion failed")
)

// Config contains language-model provider settings.
type Config struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string

	// APIKey authenticates with the provider.
	APIKey string

	// BaseURL overrides the provider endpoint. Empty uses the
	// provider's default (api.openai.com for OpenAI).
	BaseURL string

	// Timeout is the completion timeout in seconds. 0 uses the default.
	Timeout int
}

// Client generates completions from an OpenAI-compatible provider.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	model   llms.Model
	timeout time.Duration
}

// New creates a language-model client.
//
// Parameters:
//   - cfg: Provider settings from config.yaml
//
// Returns:
//   - *Client: Client ready for use
//   - error: ErrNotConfigured if model or API key is missing
func New(cfg Config) (*Client, error) {
	if cfg.Model == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: model and api_key are required", ErrNotConfigured)
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: creating provider client: %w", err)
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		model:   model,
		timeout: timeout,
	}, nil
}

// NewWithModel wraps an existing llms.Model. Used by tests to inject fakes.
func NewWithModel(model llms.Model, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{model: model, timeout: timeout}
}

// Complete sends a prompt to the model and returns its text response.
//
// The call is bounded by the configured timeout in addition to any
// deadline already on ctx.
//
// Parameters:
//   - ctx: Context for cancellation
//   - prompt: Full prompt text including instructions and platform state
//
// Returns:
//   - string: Raw model response text
//   - error: ErrCompletionFailed wrapping the provider error
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("%w: empty response", ErrCompletionFailed)
	}

	return response, nil
}
