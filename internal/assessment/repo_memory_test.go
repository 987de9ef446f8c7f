package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assessment-backend/internal/recommendations"
)

func TestMemoryRepoLatestAndComplete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Latest(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for i, id := range []string{"a", "b"} {
		sub := Submission{ID: id, UserID: "user-1", Status: StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Create(ctx, sub); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	latest, err := repo.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "b" || latest.Recommendations != nil {
		t.Fatalf("unexpected latest: %#v", latest)
	}

	if err := repo.Complete(ctx, "b", Outcome{Status: StatusDegraded, Recommendations: recommendations.Fallback(), CompletedAt: base}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	latest, _ = repo.Latest(ctx, "user-1")
	if latest.Status != StatusDegraded || latest.Recommendations == nil || latest.CompletedAt == nil {
		t.Fatalf("unexpected completed submission: %#v", latest)
	}
	if err := repo.Complete(ctx, "missing", Outcome{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	page, err := repo.ListByUser(ctx, "user-1", 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected page %#v err=%v", page, err)
	}
	if page, _ := repo.ListByUser(ctx, "user-1", 5, 10); len(page) != 0 {
		t.Fatalf("expected empty page past the end")
	}
}

func TestMemoryRepoConcurrentCreates(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, Submission{ID: time.Duration(i).String(), UserID: "u", CreatedAt: time.Now()})
		}(i)
	}
	wg.Wait()
	list, err := repo.ListByUser(ctx, "u", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 50 {
		t.Fatalf("expected 50 submissions, got %d", len(list))
	}
}
