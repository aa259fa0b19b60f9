package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New("test", prometheus.NewRegistry())

	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/posts/:postId", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/posts/1", "/posts/2", "/fail", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "/posts/:postId", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.errorTotal.WithLabelValues("GET", "/fail", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.errorTotal.WithLabelValues("GET", "unmatched", "4xx")))
}
