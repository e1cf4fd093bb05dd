package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "kalaga"

// Metrics holds the collectors of one server instance. Each instance owns its
// registry so several routers can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	RateLimitAllowed   *prometheus.CounterVec
	RateLimitRejected  *prometheus.CounterVec
	ContactSubmissions *prometheus.CounterVec
	DocumentSaves      *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
			[]string{"limiter"},
		),
		RateLimitRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
			[]string{"limiter"},
		),
		ContactSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "contact_submissions_total", Help: "Contact form submissions by result."},
			[]string{"result"},
		),
		DocumentSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "document_saves_total", Help: "Section document saves by section and result."},
			[]string{"section", "result"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "admin_login_attempts_total", Help: "Admin login attempts by result."},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
			[]string{"method", "route"},
		),
	}

	m.Registry.MustRegister(
		m.RateLimitAllowed,
		m.RateLimitRejected,
		m.ContactSubmissions,
		m.DocumentSaves,
		m.LoginAttempts,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSave records the outcome of a section save.
func (m *Metrics) ObserveSave(section string, err error) {
	if m == nil {
		return
	}
	m.DocumentSaves.WithLabelValues(section, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
