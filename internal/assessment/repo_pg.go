package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"assessment-backend/internal/recommendations"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const submissionColumns = `id, user_id, answers, status, recommendations, prompt_hash, provider, model,
       error_message, created_at, completed_at`

// Create inserts a new submission.
func (r *PGRepo) Create(ctx context.Context, sub Submission) error {
	const query = `
INSERT INTO submissions (id, user_id, answers, status, created_at)
VALUES ($1, $2, $3::jsonb, $4, $5)`
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query, sub.ID, sub.UserID, string(answers), sub.Status, sub.CreatedAt)
	return err
}

// Complete writes the processing outcome onto a submission.
func (r *PGRepo) Complete(ctx context.Context, submissionID string, out Outcome) error {
	const query = `
UPDATE submissions
SET status = $1,
    recommendations = $2::jsonb,
    prompt_hash = $3,
    provider = $4,
    model = $5,
    error_message = $6,
    completed_at = $7
WHERE id = $8::uuid`
	doc, err := json.Marshal(out.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query,
		out.Status,
		string(doc),
		out.PromptHash,
		out.Provider,
		out.Model,
		out.ErrorMessage,
		out.CompletedAt,
		submissionID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Latest returns the user's most recently created submission.
func (r *PGRepo) Latest(ctx context.Context, userID string) (Submission, error) {
	query := `
SELECT ` + submissionColumns + `
FROM submissions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	sub, err := scanSubmission(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

// ListByUser returns submissions newest first. A non-positive limit means no limit.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Submission, error) {
	query := `
SELECT ` + submissionColumns + `
FROM submissions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var s Submission
	var answers []byte
	var recs []byte
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&answers,
		&s.Status,
		&recs,
		&s.PromptHash,
		&s.Provider,
		&s.Model,
		&errorMessage,
		&s.CreatedAt,
		&completedAt,
	); err != nil {
		return Submission{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return Submission{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(recs) > 0 {
		var doc recommendations.Document
		if err := json.Unmarshal(recs, &doc); err != nil {
			return Submission{}, fmt.Errorf("decode recommendations: %w", err)
		}
		s.Recommendations = &doc
	}
	if errorMessage.Valid {
		s.ErrorMessage = &errorMessage.String
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return s, nil
}
