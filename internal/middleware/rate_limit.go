package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/metrics"
	"golang.org/x/time/rate"
)

// RateLimiter 按客户端 IP 维护令牌桶
type RateLimiter struct {
	name    string
	rps     float64
	burst   int
	metrics *metrics.Metrics
	now     func() time.Time

	limiters sync.Map // map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

// NewRateLimiter returns a limiter allowing rps events per second with the given burst.
// name labels the limiter in metrics.
func NewRateLimiter(name string, rps float64, burst int, m *metrics.Metrics) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{name: name, rps: rps, burst: burst, metrics: m, now: time.Now}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	v, ok := l.limiters.Load(key)
	if !ok {
		v, _ = l.limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)})
	}
	entry := v.(*clientLimiter)
	entry.lastSeen.Store(l.now().UnixNano())
	return entry.limiter
}

// Prune 删除超过 idle 未出现的客户端，返回删除数量
func (l *RateLimiter) Prune(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	removed := 0
	l.limiters.Range(func(key, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	n := 0
	l.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Allow reports whether the client identified by key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	allowed := l.limiter(key).Allow()
	if l.metrics != nil {
		if allowed {
			l.metrics.RateLimitAllowed.WithLabelValues(l.name).Inc()
		} else {
			l.metrics.RateLimitRejected.WithLabelValues(l.name).Inc()
		}
	}
	return allowed
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow("ip:" + ip) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again shortly."})
			return
		}
		c.Next()
	}
}
