package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarydesk/internal/apperr"
)

// statusFor maps an operation error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicate),
		errors.Is(err, apperr.ErrNotAvailable),
		errors.Is(err, apperr.ErrOverReturn):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError writes err as an ErrorResponse. Domain errors carry their
// message; store and file failures are logged and answered generically.
func respondAppError(c *gin.Context, err error) {
	status := statusFor(err)
	kind := apperr.KindOf(err)

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("kind", kind.String()).
			Msg("request failed")
		msg := "internal server error"
		if kind == apperr.KindTimeout {
			msg = "the library database did not answer in time"
		}
		c.JSON(status, ErrorResponse{Error: msg, Code: kind.String()})
		return
	}

	msg := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: kind.String()})
}
