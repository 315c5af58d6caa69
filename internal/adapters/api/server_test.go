package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/internal/scheduler"
	"weatherbot.app/pkg/errors"
)

type stubHealth struct {
	results map[string]ports.HealthStatus
}

func (s stubHealth) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	return s.results
}

type stubStatus struct {
	status scheduler.Status
}

func (s stubStatus) Status() scheduler.Status { return s.status }

func newTestServer(t *testing.T, health map[string]ports.HealthStatus, status scheduler.Status) *HTTPServerAdapter {
	gin.SetMode(gin.TestMode)
	server, err := NewHTTPServerAdapter(ServerOptions{
		Config: ServerConfig{Port: 8080},
		Health: stubHealth{results: health},
		Status: stubStatus{status: status},
		Logger: mocks.NewLogger(),
	})
	require.NoError(t, err)
	return server
}

func serve(server *HTTPServerAdapter, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewHTTPServerAdapter_RequiresDependencies(t *testing.T) {
	tests := []struct {
		name string
		opts ServerOptions
	}{
		{"MissingHealth", ServerOptions{Status: stubStatus{}, Logger: mocks.NewLogger()}},
		{"MissingStatus", ServerOptions{Health: stubHealth{}, Logger: mocks.NewLogger()}},
		{"MissingLogger", ServerOptions{Health: stubHealth{}, Status: stubStatus{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewHTTPServerAdapter(tt.opts)
			assert.Nil(t, server)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name         string
		results      map[string]ports.HealthStatus
		expectedCode int
		expected     string
	}{
		{
			name: "AllHealthy",
			results: map[string]ports.HealthStatus{
				"database":  {Component: "database", Status: "healthy"},
				"scheduler": {Component: "scheduler", Status: "healthy"},
			},
			expectedCode: http.StatusOK,
			expected:     "healthy",
		},
		{
			name: "SchedulerStalled",
			results: map[string]ports.HealthStatus{
				"database":  {Component: "database", Status: "healthy"},
				"scheduler": {Component: "scheduler", Status: "unhealthy", Error: "no weather fetch completed within 50m0s"},
			},
			expectedCode: http.StatusServiceUnavailable,
			expected:     "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newTestServer(t, tt.results, scheduler.Status{}), "/health")

			assert.Equal(t, tt.expectedCode, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expected, body.Status)
			assert.Len(t, body.Components, len(tt.results))
		})
	}
}

func TestGetStatus(t *testing.T) {
	beat := time.Date(2024, 5, 10, 9, 30, 12, 0, time.UTC)
	status := scheduler.Status{
		State:         "idle",
		LastHeartbeat: beat,
		NextRun:       beat.Add(30 * time.Minute),
		LastCycle:     &scheduler.CycleSummary{ID: "c-1", Cities: 2, Changes: 1},
	}
	server := newTestServer(t, nil, status)

	w := serve(server, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, "2024-05-10T09:30:12Z", body["last_heartbeat"])

	w = serve(server, "/api/cycles/last")
	require.Equal(t, http.StatusOK, w.Code)
	var cycle scheduler.CycleSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cycle))
	assert.Equal(t, "c-1", cycle.ID)
	assert.Equal(t, 2, cycle.Cities)
}

func TestGetLastCycle_NoneYet(t *testing.T) {
	w := serve(newTestServer(t, nil, scheduler.Status{State: "fetching"}), "/api/cycles/last")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no cycle has completed yet"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	w := serve(newTestServer(t, nil, scheduler.Status{}), "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"Validation", errors.NewValidationError("bad city"), http.StatusBadRequest, "bad city"},
		{"NotFound", errors.NewNotFoundError("no such cycle"), http.StatusNotFound, "no such cycle"},
		{"Unavailable", errors.NewUnavailableError("timeout", nil), http.StatusServiceUnavailable, "External service unavailable"},
		{"Dispatch", errors.NewDispatchError("blocked", nil), http.StatusServiceUnavailable, "External service unavailable"},
		{"Database", errors.NewDatabaseError("connection refused", nil), http.StatusInternalServerError, "Internal server error"},
		{"Plain", fmt.Errorf("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			logger := mocks.NewLogger()
			server := &HTTPServerAdapter{logger: logger}
			router := gin.New()
			router.GET("/fail", func(c *gin.Context) { server.handleError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body.Error)
			assert.Equal(t, tt.expectedCode == http.StatusInternalServerError, logger.Has("error", "Request failed"))
		})
	}
}
