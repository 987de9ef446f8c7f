package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(string) (auth.Claims, error) {
	return s.claims, s.err
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{err: auth.ErrInvalidToken}))
	router.OPTIONS("/api/v1/assessment/submit", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/assessment/submit", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		header   string
		verifier stubVerifier
	}{
		"missing header": {verifier: stubVerifier{claims: auth.Claims{Sub: "u"}}},
		"not bearer":     {header: "Basic abc", verifier: stubVerifier{claims: auth.Claims{Sub: "u"}}},
		"empty bearer":   {header: "Bearer ", verifier: stubVerifier{claims: auth.Claims{Sub: "u"}}},
		"bad token":      {header: "Bearer abc", verifier: stubVerifier{err: errors.New("bad")}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth(tc.verifier))
			router.GET("/api/v1/me", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
		})
	}
}

func TestAuthStoresClaimsAndSkipsPublicPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{claims: auth.Claims{Sub: "user-1", Email: "a@example.com"}}, "/api/v1/health"))
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})
	router.GET("/api/v1/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c)+"|"+UserEmailFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != "" {
		t.Fatalf("expected anonymous 200 on public path, got %d %q", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != "user-1|a@example.com" {
		t.Fatalf("unexpected identity: %q", got)
	}
}
