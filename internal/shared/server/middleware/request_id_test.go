package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != "abc-123" || resp.Header().Get("X-Request-Id") != "abc-123" {
		t.Fatalf("expected inbound id to be echoed, got body=%q header=%q", resp.Body.String(), resp.Header().Get("X-Request-Id"))
	}

	req = httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 500))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Body.String(); len(got) != 36 {
		t.Fatalf("expected generated uuid for oversized id, got %q", got)
	}
}
