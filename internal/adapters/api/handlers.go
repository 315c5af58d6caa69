package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.health.CheckAll(c.Request.Context())

	response := HealthResponse{Status: "healthy", Components: results}
	code := http.StatusOK
	for _, status := range results {
		if status.Status != "healthy" {
			response.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, response)
}

func (s *HTTPServerAdapter) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status.Status())
}

func (s *HTTPServerAdapter) getLastCycle(c *gin.Context) {
	status := s.status.Status()
	if status.LastCycle == nil {
		s.handleError(c, errors.NewNotFoundError("no cycle has completed yet"))
		return
	}
	c.JSON(http.StatusOK, status.LastCycle)
}
