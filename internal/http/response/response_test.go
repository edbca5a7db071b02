package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/apierr"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"invalid", fmt.Errorf("%w: value is required", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument", "invalid argument: value is required"},
		{"not found", pkgerrors.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
		{"unavailable", fmt.Errorf("publish: %w", pkgerrors.ErrUnavailable), http.StatusServiceUnavailable, "unavailable", "publish: unavailable"},
		{"explicit", apierr.New(http.StatusConflict, "conflict", errors.New("taken")), http.StatusConflict, "conflict", "taken"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.message {
				t.Fatalf("envelope = %+v", env.Error)
			}
		})
	}
}
