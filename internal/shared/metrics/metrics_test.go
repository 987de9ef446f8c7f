package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFallbackCounterByReason(t *testing.T) {
	before := testutil.ToFloat64(submissionsFallback.WithLabelValues("timeout"))
	IncSubmissionFallback("timeout")
	after := testutil.ToFloat64(submissionsFallback.WithLabelValues("timeout"))
	if after-before != 1 {
		t.Fatalf("expected fallback counter to increase by 1, got %v", after-before)
	}
}

func TestHandlerRendersMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncSubmissionStarted()
	ObserveProviderDuration("openai", "ok", 1500*time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{
		"assessment_submissions_started_total",
		"assessment_provider_duration_ms_bucket",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestRegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	RegisterDBStats(db, "submissions")
	RegisterDBStats(db, "submissions")

	count, err := testutil.GatherAndCount(Registry(), "go_sql_open_connections")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one pool series, got %d", count)
	}
}
