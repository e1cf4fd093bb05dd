package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	limiter := NewRateLimiter("contact", 10, 2, m)

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 2.0, testutil.ToFloat64(m.RateLimitAllowed.WithLabelValues("contact")))
}

func TestRateLimiterBlocksWhenExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	limiter := NewRateLimiter("login", 0.5, 1, m)

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/limited", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	require.Equal(t, "1", w2.Header().Get("Retry-After"))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejected.WithLabelValues("login")))

	time.Sleep(2100 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimiterKeysByClient(t *testing.T) {
	limiter := NewRateLimiter("contact", 0.01, 1, nil)
	require.True(t, limiter.Allow("ip:1.1.1.1"))
	require.False(t, limiter.Allow("ip:1.1.1.1"))
	require.True(t, limiter.Allow("ip:2.2.2.2"))
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter("contact", 0.01, 1, nil)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.Allow("ip:1.1.1.1"))
	now = now.Add(20 * time.Minute)
	require.True(t, limiter.Allow("ip:2.2.2.2"))
	require.Equal(t, 2, limiter.Len())

	require.Equal(t, 1, limiter.Prune(15*time.Minute))
	require.Equal(t, 1, limiter.Len())
	require.False(t, limiter.Allow("ip:2.2.2.2"), "recent client keeps its bucket")

	now = now.Add(time.Hour)
	require.Equal(t, 1, limiter.Prune(15*time.Minute))
	require.Equal(t, 0, limiter.Len())
	require.True(t, limiter.Allow("ip:2.2.2.2"), "pruned client starts with a fresh bucket")
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()

	r := gin.New()
	r.Use(RequestLogger(zap.New(core), m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	missing := httptest.NewRecorder()
	r.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "204")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	require.Equal(t, 2, logs.Len())
	require.Equal(t, "/items/42", logs.All()[0].ContextMap()["path"])
}
