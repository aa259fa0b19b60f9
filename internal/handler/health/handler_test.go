package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/memory-api/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newRouter(p Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics.NewMetrics("memory", reg).LiveChannels.Set(2)

	r := gin.New()
	NewHandler(p, reg).RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := get(newRouter(pinger{}), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newRouter(pinger{}), "/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(newRouter(pinger{err: errors.New("down")}), "/health/ready").Code)
}

func TestMetricsExposesRegistry(t *testing.T) {
	w := get(newRouter(pinger{}), "/health/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memory_live_channels 2")
}
