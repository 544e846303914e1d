package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/devevent-api/internal/service"
)

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"database": pingerStub{}, "cache": nil}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	h = NewMetricsHandler(nil, map[string]Pinger{"database": pingerStub{err: errors.New("refused")}}, nil)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "down", body.Checks["database"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")
}
