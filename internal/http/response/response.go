package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps a service error onto the envelope. Unclassified
// errors become a 500 without their message.
func RespondServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	e := FromError(err)
	if e.Status >= http.StatusInternalServerError && !errors.Is(err, pkgerrors.ErrUnavailable) {
		RespondError(c, e.Status, e.Code, errors.New("internal error"))
		return
	}
	RespondError(c, e.Status, e.Code, e.Err)
}

func FromError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "unavailable", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
