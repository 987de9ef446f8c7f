package assessment

import (
	"context"
	"time"

	"assessment-backend/internal/llm"
	"assessment-backend/internal/shared/telemetry"
)

const providerRetryDelay = 300 * time.Millisecond

// retryingClient retries a transient provider failure exactly once.
type retryingClient struct {
	base         llm.Client
	delay        time.Duration
	submissionID string
}

func newRetryingClient(base llm.Client, delay time.Duration, submissionID string) llm.Client {
	return retryingClient{base: base, delay: delay, submissionID: submissionID}
}

func (r retryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := r.base.Complete(ctx, prompt)
	if err == nil || !llm.IsTransient(err) || ctx.Err() != nil {
		return text, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"submission_id": r.submissionID,
		"attempt":       1,
		"error":         sanitizeError(err),
	})
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", err
		}
	}
	return r.base.Complete(ctx, prompt)
}
