package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/assessment"
	"assessment-backend/internal/catalog"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/llm"
	"assessment-backend/internal/shared/auth"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/server/middleware"
)

type fixedSource struct{ cat catalog.Catalog }

func (s fixedSource) Load(ctx context.Context) (catalog.Catalog, error) {
	return s.cat, nil
}

func newTestRouter(t *testing.T, cfg config.Config) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner(cfg)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	cat := catalog.Catalog{{Name: "Access Control", Questions: []catalog.Question{{ID: "q1", Text: "MFA?"}}}}
	svc := assessment.NewService(assessment.NewMemoryRepo(), fixedSource{cat: cat}, llm.PlaceholderClient{}, "none", "", time.Second)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r := NewRouter(RouterDeps{
		Config:            cfg,
		Verifier:          signer,
		Signer:            signer,
		AssessmentHandler: assessment.NewHandler(svc),
		GoogleAuth:        identity.NewGoogleService(cfg, signer),
		RateLimiter:       middleware.NewRateLimiter(func() time.Time { return now }),
	})
	return r, signer
}

func bearer(t *testing.T, signer *auth.Signer, sub string) string {
	t.Helper()
	token, err := signer.Sign(auth.Claims{Sub: sub, Email: sub + "@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return "Bearer " + token
}

func serve(r http.Handler, method, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t, config.Config{Env: "dev", SubmitRatePerMinute: 6})

	if resp := serve(r, http.MethodGet, "/api/v1/health", "", ""); resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", resp.Code, resp.Body.String())
	}
	resp := serve(r, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "go_goroutines") {
		t.Fatalf("metrics: %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/assessment/questions", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestMeAndQuestionsWithToken(t *testing.T) {
	r, signer := newTestRouter(t, config.Config{Env: "dev"})
	authz := bearer(t, signer, "user-7")

	resp := serve(r, http.MethodGet, "/api/v1/me", authz, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.Code)
	}
	var me meResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.UserID != "user-7" || me.Email != "user-7@example.com" {
		t.Fatalf("unexpected identity: %#v", me)
	}

	if resp := serve(r, http.MethodGet, "/api/v1/assessment/questions", authz, ""); resp.Code != http.StatusOK {
		t.Fatalf("questions: expected 200, got %d", resp.Code)
	}
}

func TestDevTokenOnlyInDev(t *testing.T) {
	r, signer := newTestRouter(t, config.Config{Env: "dev"})
	resp := serve(r, http.MethodPost, "/api/v1/dev/token", "", `{"userId":"tester"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("dev token: expected 200, got %d", resp.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := signer.Verify(body.Token); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	prod, _ := newTestRouter(t, config.Config{Env: "production", JWTSecret: "s3cret"})
	if resp := serve(prod, http.MethodPost, "/api/v1/dev/token", "", `{"userId":"tester"}`); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected dev route to be unavailable in production, got %d", resp.Code)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	r, signer := newTestRouter(t, config.Config{Env: "dev", SubmitRatePerMinute: 2})
	authz := bearer(t, signer, "user-1")

	for i := 0; i < 2; i++ {
		resp := serve(r, http.MethodPost, "/api/v1/assessment/submit", authz, `{"q1":"Yes"}`)
		if resp.Code != http.StatusOK {
			t.Fatalf("submit %d: expected 200, got %d: %s", i+1, resp.Code, resp.Body.String())
		}
		if !strings.Contains(resp.Body.String(), `"status":"degraded"`) {
			t.Fatalf("expected fallback without provider, got %s", resp.Body.String())
		}
	}
	resp := serve(r, http.MethodPost, "/api/v1/assessment/submit", authz, `{"q1":"Yes"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	if resp := serve(r, http.MethodGet, "/api/v1/assessment/recommendations", authz, ""); resp.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
