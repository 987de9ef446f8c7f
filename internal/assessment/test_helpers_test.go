package assessment

import (
	"context"
	"sync"
	"testing"
	"time"

	"assessment-backend/internal/catalog"
	"assessment-backend/internal/llm"
)

const testCatalogJSON = `[
  {"section": "Access Control", "questions": [
    {"id": "q1", "text": "Do you enforce multi-factor authentication?"},
    {"id": "q2", "text": "How often are passwords rotated?"}
  ]},
  {"section": "Network Security", "questions": [
    {"id": "q3", "text": "Is a firewall deployed at the network edge?"}
  ]}
]`

const testCompletion = `**Overall Security Score:** 55/100

**Summary:** Basic controls exist but authentication is weak.

**Security Vulnerabilities**
* **No MFA:**
  **Description:** Accounts rely on passwords alone.
  **AI Insights:** Stolen passwords give full access.
  **Action Steps:**
  * Enable MFA for email
  * Enable MFA for admin tools
  **Priority:** High

**Conclusion:** Address authentication first.
`

type staticSource struct {
	mu    sync.Mutex
	cat   catalog.Catalog
	err   error
	loads int
}

func (s *staticSource) Load(ctx context.Context) (catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.cat, nil
}

func newTestSource(t *testing.T) *staticSource {
	t.Helper()
	cat, err := catalog.DecodeBytes([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	return &staticSource{cat: cat}
}

type stubResponse struct {
	text string
	err  error
}

// stubClient replays responses in order; the last one repeats.
type stubClient struct {
	mu        sync.Mutex
	responses []stubResponse
	prompts   []string
	// block waits for the context to end before failing.
	block bool
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	idx := len(s.prompts) - 1
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", &llm.ProviderError{Provider: "stub", Message: "request timeout", Transient: true, Err: ctx.Err()}
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.text, r.err
}

func (s *stubClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func newTestService(t *testing.T, client llm.Client) (*Service, *MemoryRepo, *staticSource) {
	t.Helper()
	repo := NewMemoryRepo()
	source := newTestSource(t)
	svc := NewService(repo, source, client, "stub", "stub-model", time.Second)
	svc.RetryDelay = 0
	return svc, repo, source
}

func transientErr() error {
	return &llm.ProviderError{Provider: "stub", StatusCode: 503, Message: "unavailable", Transient: true}
}
