package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/ctxutil"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

func TestAttachRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext(), RequestLogger(logger.Nop()))
	var seen *ctxutil.TraceData
	r.GET("/health", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if seen == nil || seen.RequestID == "" {
		t.Fatalf("expected a generated request id, got %+v", seen)
	}
	if rec.Header().Get(headerRequestID) != seen.RequestID {
		t.Fatalf("request id should be echoed back")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	req.Header.Set(headerTraceID, "trace-abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen.RequestID != "req-123" || seen.TraceID != "trace-abc" {
		t.Fatalf("incoming ids should be kept, got %+v", seen)
	}
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/reports/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `phonebook_http_requests_total{method="GET",route="/api/reports/:id",status="404"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected %s in exposition", want)
	}
}

func TestMetricsMiddlewareNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}
