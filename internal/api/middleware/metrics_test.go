package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/loans/{loanID}", testHandler)

	req := httptest.NewRequest(http.MethodGet, "/loans/LN123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, rec.Code)
	}

	expectedTotal := `
		# HELP http_requests_total Total number of HTTP requests by route and status.
		# TYPE http_requests_total counter
		http_requests_total{method="GET",route="/loans/{loanID}",status="200"} 1
	`
	if err := testutil.GatherAndCompare(prometheus.DefaultGatherer,
		strings.NewReader(expectedTotal), "http_requests_total"); err != nil {
		t.Errorf("unexpected metrics for http_requests_total: %v", err)
	}
}
