package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"assessment-backend/internal/llm"
	"assessment-backend/internal/shared/telemetry"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

// Options configures the Gemini client. BaseURL is only set in tests.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client implements llm.Client using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini completion client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Complete generates a single-turn completion for prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.2)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", mapError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &llm.ProviderError{Provider: providerName, Message: "response empty content"}
	}

	fields := map[string]any{"provider": providerName, "model": c.model}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func mapError(err error) *llm.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Transient:  llm.TransientStatus(apiErr.Code),
			Err:        err,
		}
	}
	transient := errors.Is(err, context.DeadlineExceeded)
	msg := "request failed"
	if transient {
		msg = "request timeout"
	}
	return &llm.ProviderError{Provider: providerName, Message: msg, Transient: transient, Err: err}
}

var _ llm.Client = (*Client)(nil)
