package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-admin-console/internal/service"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newMetricsRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)
	return r
}

func TestReadyReflectsCache(t *testing.T) {
	r := newMetricsRouter(NewMetricsHandler(service.NewMetricsService(), stubPinger{}))
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready", nil).Code)

	r = newMetricsRouter(NewMetricsHandler(service.NewMetricsService(), stubPinger{err: errors.New("down")}))
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/ready", nil).Code)

	r = newMetricsRouter(NewMetricsHandler(service.NewMetricsService(), nil))
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready", nil).Code)
}

func TestPrometheusAndSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveBackendCall(http.MethodGet, "/students", http.StatusOK, 0)
	r := newMetricsRouter(NewMetricsHandler(metrics, nil))

	rec := perform(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend_requests_total")

	rec = perform(r, http.MethodGet, "/metrics/summary", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.EqualValues(t, 1, envelope.Data["backend_calls_total"])

	rec = perform(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrometheusWithoutMetrics(t *testing.T) {
	r := newMetricsRouter(NewMetricsHandler(nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/metrics", nil).Code)
}
