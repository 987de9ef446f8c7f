package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client sends a prompt to a generative-text provider and returns the raw completion.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("provider not configured")

// ProviderError is the single failure type surfaced by completion clients.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	// Transient marks failures worth one retry: timeouts, 429s and 5xx responses.
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a ProviderError marked transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// TransientStatus reports whether an HTTP status code is worth retrying.
func TransientStatus(code int) bool {
	return code == 429 || code >= 500
}

// PlaceholderClient stands in when no provider credentials are configured.
type PlaceholderClient struct{}

// Complete always fails with ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", &ProviderError{Provider: "none", Message: ErrNotConfigured.Error(), Err: ErrNotConfigured}
}

var _ Client = PlaceholderClient{}
