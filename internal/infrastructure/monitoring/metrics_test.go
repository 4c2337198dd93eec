package monitoring

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTPRequest(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	ObserveHTTPRequest("POST", "/sessions/{sessionID}/turns", 200, 0.042)
	ObserveHTTPRequest("POST", "/sessions/{sessionID}/turns", 200, 0.013)
	ObserveHTTPRequest("POST", "/sessions/{sessionID}/turns", 404, 0.002)

	expected := `
		# HELP http_requests_total Total number of HTTP requests by route and status.
		# TYPE http_requests_total counter
		http_requests_total{method="POST",route="/sessions/{sessionID}/turns",status="200"} 2
		http_requests_total{method="POST",route="/sessions/{sessionID}/turns",status="404"} 1
	`
	if err := testutil.CollectAndCompare(httpRequestsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics for http_requests_total: %v", err)
	}

	if got := testutil.CollectAndCount(httpRequestDuration); got != 1 {
		t.Errorf("expected one duration series, got %d", got)
	}
}

func TestObserveDecision(t *testing.T) {
	decisionsTotal.Reset()

	ObserveDecision("APPROVED")
	ObserveDecision("APPROVED")
	ObserveDecision("REJECTED")

	expected := `
		# HELP loan_decisions_total Total number of loan decisions by outcome.
		# TYPE loan_decisions_total counter
		loan_decisions_total{outcome="APPROVED"} 2
		loan_decisions_total{outcome="REJECTED"} 1
	`
	if err := testutil.CollectAndCompare(decisionsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics for loan_decisions_total: %v", err)
	}
}
