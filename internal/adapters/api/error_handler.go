package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/ports"
	errorspkg "weatherbot.app/pkg/errors"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleError maps application errors to HTTP responses
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	var appErr *errorspkg.AppError
	if !errors.As(err, &appErr) {
		s.logError(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	var statusCode int
	var message string
	switch appErr.Type {
	case errorspkg.ValidationError:
		statusCode = http.StatusBadRequest
		message = appErr.Message
	case errorspkg.NotFoundError:
		statusCode = http.StatusNotFound
		message = appErr.Message
	case errorspkg.UnavailableError, errorspkg.DispatchError:
		statusCode = http.StatusServiceUnavailable
		message = "External service unavailable"
	default:
		s.logError(err)
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, ErrorResponse{Error: message})
}

func (s *HTTPServerAdapter) logError(err error) {
	if s.logger != nil {
		s.logger.Error("Request failed", ports.F("error", err))
	}
}
