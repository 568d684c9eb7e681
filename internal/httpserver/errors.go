package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"favorites-catalog/internal/domain"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal Server Error"

// statusFor maps a service error to an HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		external   *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Message
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.As(err, &external):
		if external.ShortCircuited {
			return http.StatusServiceUnavailable, fmt.Sprintf("%s temporarily unavailable", external.Service)
		}
		return http.StatusBadGateway, fmt.Sprintf("%s request failed", external.Service)
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func (h *handlers) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Printf("http: %s %s request_id=%s status=%d error=%v", c.Request.Method, c.FullPath(), c.GetString(requestIDKey), status, err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
