package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.IncInflight()
	m.DecInflight()
	m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	m.ObserveMessage(OutcomeCompleted, time.Second)
	m.SetWorkerState("polling", "disconnected", "polling")
	m.IncReconnect()
	m.IncReportsRequested()
	m.ObserveReportLocations(3)
	if err := m.RegisterDB(nil, "x"); err != nil {
		t.Fatalf("RegisterDB on nil: %v", err)
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveMessage(OutcomeCompleted, 20*time.Millisecond)
	m.ObserveMessage(OutcomeCompleted, 30*time.Millisecond)
	m.ObserveMessage(OutcomeMalformed, 0)
	m.IncReconnect()

	if got := testutil.ToFloat64(m.workerMessages.WithLabelValues(OutcomeCompleted)); got != 2 {
		t.Fatalf("completed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.workerMessages.WithLabelValues(OutcomeMalformed)); got != 1 {
		t.Fatalf("malformed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.workerReconnects); got != 1 {
		t.Fatalf("reconnects = %v, want 1", got)
	}

	states := []string{"disconnected", "subscribing", "polling"}
	m.SetWorkerState("subscribing", states...)
	m.SetWorkerState("polling", states...)
	if testutil.ToFloat64(m.workerState.WithLabelValues("polling")) != 1 ||
		testutil.ToFloat64(m.workerState.WithLabelValues("subscribing")) != 0 {
		t.Fatalf("only the current state should read 1")
	}
}

func TestMetricsHandlerExposes(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("POST", "/api/reports/request", 202, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `phonebook_http_requests_total{method="POST",route="/api/reports/request",status="202"} 1`) {
		t.Fatalf("request counter missing from exposition:\n%s", body)
	}
}
