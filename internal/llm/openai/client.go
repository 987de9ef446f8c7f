package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assessment-backend/internal/llm"
	"assessment-backend/internal/shared/telemetry"
	"assessment-backend/internal/shared/util"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
	maxErrorBody   = 512
	maxBody        = 4 << 20
)

// Options configures the Chat Completions client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		endpoint: baseURL + "/chat/completions",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as a single user message and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if !isGPT5(c.model) {
		temp := float32(0.2)
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", providerErr(0, "encode request", false, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", providerErr(0, "build request", false, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", providerErr(0, "request timeout", true, err)
		}
		if errors.Is(err, context.Canceled) {
			return "", providerErr(0, "request canceled", false, err)
		}
		return "", providerErr(0, "transport failure", true, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return "", providerErr(resp.StatusCode, "read response", true, err)
	}
	if len(body) > maxBody {
		return "", providerErr(resp.StatusCode, "response too large", false, nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", providerErr(resp.StatusCode, truncate(strings.TrimSpace(string(body))), llm.TransientStatus(resp.StatusCode), nil)
		}
		return "", providerErr(resp.StatusCode, "response parse", false, err)
	}
	if parsed.Error != nil {
		msg := parsed.Error.Message
		if parsed.Error.Type != "" {
			msg = fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", providerErr(resp.StatusCode, msg, llm.TransientStatus(resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return "", providerErr(resp.StatusCode, truncate(strings.TrimSpace(string(body))), llm.TransientStatus(resp.StatusCode), nil)
	}
	if len(parsed.Choices) == 0 {
		return "", providerErr(resp.StatusCode, "response missing choices", false, nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", providerErr(resp.StatusCode, "response empty content", false, nil)
	}
	logUsage(c.model, parsed)
	return content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func providerErr(status int, msg string, transient bool, err error) *llm.ProviderError {
	return &llm.ProviderError{
		Provider:   providerName,
		StatusCode: status,
		Message:    msg,
		Transient:  transient,
		Err:        err,
	}
}

func logUsage(model string, parsed chatResponse) {
	fields := map[string]any{"provider": providerName, "model": model}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func truncate(s string) string {
	return util.Truncate(s, maxErrorBody)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
