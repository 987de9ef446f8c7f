package assessment

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores submissions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Submission
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Submission),
		byUser: make(map[string][]string),
	}
}

// Create stores the submission.
func (r *MemoryRepo) Create(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sub.ID] = sub
	r.byUser[sub.UserID] = append(r.byUser[sub.UserID], sub.ID)
	return nil
}

// Complete records the processing outcome of a pending submission.
func (r *MemoryRepo) Complete(ctx context.Context, submissionID string, out Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byID[submissionID]
	if !ok {
		return ErrNotFound
	}
	doc := out.Recommendations
	completedAt := out.CompletedAt
	sub.Status = out.Status
	sub.Recommendations = &doc
	sub.PromptHash = out.PromptHash
	sub.Provider = out.Provider
	sub.Model = out.Model
	sub.ErrorMessage = out.ErrorMessage
	sub.CompletedAt = &completedAt
	r.byID[submissionID] = sub
	return nil
}

// Latest returns the user's most recently created submission.
func (r *MemoryRepo) Latest(ctx context.Context, userID string) (Submission, error) {
	list, err := r.ListByUser(ctx, userID, 1, 0)
	if err != nil {
		return Submission{}, err
	}
	if len(list) == 0 {
		return Submission{}, ErrNotFound
	}
	return list[0], nil
}

// ListByUser returns submissions newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := r.byUser[userID]
	out := make([]Submission, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, r.byID[ids[i]])
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > len(out) {
		return []Submission{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
