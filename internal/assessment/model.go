package assessment

import (
	"time"

	"assessment-backend/internal/recommendations"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusDegraded  = "degraded"
)

// Submission is one questionnaire submission and, once processed, its recommendations.
type Submission struct {
	ID              string                    `json:"id"`
	UserID          string                    `json:"userId"`
	Answers         map[string]any            `json:"answers"`
	Status          string                    `json:"status"`
	Recommendations *recommendations.Document `json:"recommendations,omitempty"`
	PromptHash      string                    `json:"promptHash,omitempty"`
	Provider        string                    `json:"provider,omitempty"`
	Model           string                    `json:"model,omitempty"`
	ErrorMessage    *string                   `json:"errorMessage,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	CompletedAt     *time.Time                `json:"completedAt,omitempty"`
}

// Outcome is what processing wrote back onto a pending submission.
type Outcome struct {
	Status          string
	Recommendations recommendations.Document
	PromptHash      string
	Provider        string
	Model           string
	ErrorMessage    *string
	CompletedAt     time.Time
}

// Result is returned to the caller of Submit.
type Result struct {
	SubmissionID    string
	Status          string
	Recommendations recommendations.Document
}
