package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"assessment-backend/internal/catalog"
	"assessment-backend/internal/llm"
	"assessment-backend/internal/recommendations"
	"assessment-backend/internal/shared/metrics"
	"assessment-backend/internal/shared/telemetry"
	"assessment-backend/internal/shared/util"
)

const defaultProviderTimeout = 60 * time.Second

// errEmptyCompletion marks a provider response with no text.
var errEmptyCompletion = errors.New("empty completion")

// Service runs the submission pipeline.
type Service struct {
	Repo     Repo
	Catalog  catalog.Source
	LLM      llm.Client
	Provider string
	Model    string
	// Timeout bounds the provider call including its retry.
	Timeout    time.Duration
	RetryDelay time.Duration

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service with production defaults.
func NewService(repo Repo, source catalog.Source, client llm.Client, provider, model string, timeout time.Duration) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Service{
		Repo:       repo,
		Catalog:    source,
		LLM:        client,
		Provider:   provider,
		Model:      model,
		Timeout:    timeout,
		RetryDelay: providerRetryDelay,
	}
}

// Questions returns the question catalog.
func (s *Service) Questions(ctx context.Context) (catalog.Catalog, error) {
	cat, err := s.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// Submit validates the answer set, persists it and returns recommendations.
// Provider failures are absorbed into the fallback document.
func (s *Service) Submit(ctx context.Context, userID string, body []byte) (Result, error) {
	if userID == "" {
		return Result{}, errors.New("userID is required")
	}
	answers, answerText, err := ValidateAnswers(body)
	if err != nil {
		return Result{}, err
	}

	cat, err := s.Questions(ctx)
	if err != nil {
		telemetry.Error("catalog.load_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
		return Result{}, err
	}

	sub := Submission{
		ID:        s.id(),
		UserID:    userID,
		Answers:   answers,
		Status:    StatusPending,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return Result{}, fmt.Errorf("create submission: %w", err)
	}
	metrics.IncSubmissionStarted()
	telemetry.Info("submission.status", map[string]any{
		"user_id":       userID,
		"submission_id": sub.ID,
		"status":        StatusPending,
		"answer_count":  len(answers),
	})

	prompt := llm.BuildAssessmentPrompt(cat, answerText)
	out := Outcome{
		PromptHash: util.SHA256Hex(prompt),
		Provider:   s.Provider,
		Model:      s.Model,
	}

	started := s.clock()
	completion, callErr := s.complete(ctx, sub.ID, prompt)
	elapsed := s.clock().Sub(started)

	if callErr != nil {
		reason := fallbackReason(callErr)
		msg := sanitizeError(callErr)
		out.Status = StatusDegraded
		out.Recommendations = recommendations.Fallback()
		out.ErrorMessage = &msg
		metrics.IncSubmissionFallback(reason)
		metrics.ObserveProviderDuration(s.Provider, reason, elapsed)
		telemetry.Warn("submission.fallback", map[string]any{
			"user_id":       userID,
			"submission_id": sub.ID,
			"reason":        reason,
			"error":         msg,
		})
	} else {
		out.Status = StatusCompleted
		out.Recommendations = recommendations.Parse(completion)
		metrics.IncSubmissionCompleted()
		metrics.ObserveProviderDuration(s.Provider, "ok", elapsed)
	}
	out.CompletedAt = s.clock().UTC()

	// The outcome is persisted even if the caller has gone away.
	if err := s.Repo.Complete(context.WithoutCancel(ctx), sub.ID, out); err != nil {
		return Result{}, fmt.Errorf("complete submission: %w", err)
	}
	telemetry.Info("submission.status", map[string]any{
		"user_id":           userID,
		"submission_id":     sub.ID,
		"status":            out.Status,
		"status_transition": StatusPending + "->" + out.Status,
		"item_count":        out.Recommendations.ItemCount(),
		"prompt_version":    llm.PromptVersion,
		"prompt_hash":       out.PromptHash,
		"duration_ms":       float64(elapsed.Microseconds()) / 1000.0,
	})

	return Result{
		SubmissionID:    sub.ID,
		Status:          out.Status,
		Recommendations: out.Recommendations,
	}, nil
}

// Latest returns the user's most recent submission.
func (s *Service) Latest(ctx context.Context, userID string) (Submission, error) {
	return s.Repo.Latest(ctx, userID)
}

// List returns the user's submissions, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Submission, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) complete(ctx context.Context, submissionID, prompt string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := newRetryingClient(s.LLM, s.RetryDelay, submissionID)
	text, err := client.Complete(callCtx, prompt)
	if err != nil {
		if callCtx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", callCtx.Err(), err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, llm.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, errEmptyCompletion):
		return "empty_completion"
	default:
		return "provider_error"
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	return util.Truncate(msg, maxLen)
}
