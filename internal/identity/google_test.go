package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"assessment-backend/internal/shared/auth"
	"assessment-backend/internal/shared/config"
)

func newTestSigner(t *testing.T) *auth.Signer {
	t.Helper()
	signer, err := auth.NewSigner(config.Config{Env: "dev"})
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return signer
}

func newGoogleTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","email":"owner@example.com","name":"Shop Owner"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupGoogleRouter(t *testing.T, cfg config.Config, signer *auth.Signer) (*gin.Engine, *GoogleService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewGoogleService(cfg, signer)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func TestGoogleStartNotConfigured(t *testing.T) {
	r, _ := setupGoogleRouter(t, config.Config{}, newTestSigner(t))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "auth_not_configured") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestGoogleLoginFlowIssuesToken(t *testing.T) {
	srv := newGoogleTestServer(t)
	signer := newTestSigner(t)
	cfg := config.Config{
		GoogleClientID:     "client",
		GoogleClientSecret: "secret",
		GoogleRedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		UIRedirectURL:      "http://localhost:3000/login?next=assessment",
	}
	r, svc := setupGoogleRouter(t, cfg, signer)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	svc.userInfoURL = srv.URL + "/userinfo"

	start := httptest.NewRecorder()
	r.ServeHTTP(start, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if start.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", start.Code)
	}
	loc, err := url.Parse(start.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in %s", loc)
	}

	cb := httptest.NewRecorder()
	r.ServeHTTP(cb, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state="+state+"&code=good-code", nil))
	if cb.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", cb.Code, cb.Body.String())
	}
	back, err := url.Parse(cb.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if back.Query().Get("next") != "assessment" {
		t.Fatalf("expected existing query to survive, got %s", back)
	}
	claims, err := signer.Verify(back.Query().Get("token"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "google:42" || claims.Email != "owner@example.com" {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	replay := httptest.NewRecorder()
	r.ServeHTTP(replay, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state="+state+"&code=good-code", nil))
	if replay.Code != http.StatusBadRequest {
		t.Fatalf("expected replayed state to be rejected, got %d", replay.Code)
	}
}

func TestGoogleCallbackRejectsMissingParams(t *testing.T) {
	r, _ := setupGoogleRouter(t, config.Config{}, newTestSigner(t))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStateStoreExpiry(t *testing.T) {
	store := newStateStore()
	now := time.Now()
	store.put("fresh", now.Add(time.Minute))
	store.put("stale", now.Add(time.Minute))

	if !store.consume("fresh", now) {
		t.Fatalf("expected fresh state to be accepted")
	}
	if store.consume("fresh", now) {
		t.Fatalf("expected state to be single use")
	}
	if store.consume("stale", now.Add(2*time.Minute)) {
		t.Fatalf("expected expired state to be rejected")
	}
}

func TestDevTokenRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := newTestSigner(t)
	r := gin.New()
	RegisterDevRoutes(r.Group("/api/v1/dev"), signer)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/dev/token", strings.NewReader(`{"userId":"tester","email":"t@example.com"}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := signer.Verify(body.Token)
	if err != nil || claims.Sub != "tester" {
		t.Fatalf("unexpected claims %#v err=%v", claims, err)
	}

	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, httptest.NewRequest(http.MethodPost, "/api/v1/dev/token", strings.NewReader(`{"userId":"  "}`)))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.Code)
	}
}
