package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

func retryableStatus(code int) bool {
	if code == http.StatusNotFound || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// IsTransient reports whether err is worth waiting out: timeouts, connection
// failures and retryable status codes. Decode errors are transient too from
// the caller's point of view, but they are classified by the caller.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return retryableStatus(sc.HTTPStatusCode())
	}
	return false
}

// NewClient returns an instrumented client with a per-request timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
