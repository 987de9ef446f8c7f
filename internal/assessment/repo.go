package assessment

import "context"

// Repo defines persistence operations for submissions.
type Repo interface {
	Create(ctx context.Context, sub Submission) error
	Complete(ctx context.Context, submissionID string, out Outcome) error
	Latest(ctx context.Context, userID string) (Submission, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error)
}
