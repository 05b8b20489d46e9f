package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the service's Prometheus collectors. Methods on a nil
// *Metrics are no-ops.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	RegistrationsTotal          *prometheus.CounterVec
	LoginsTotal                 *prometheus.CounterVec
	AuthenticationFailuresTotal prometheus.Counter
	TokensRevokedTotal          prometheus.Counter
	AuthorizationDeniedTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underbudget_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "underbudget_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underbudget_registrations_total",
				Help: "User registration attempts by result",
			},
			[]string{"result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underbudget_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		AuthenticationFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "underbudget_authentication_failures_total",
				Help: "Requests rejected for a missing, invalid or revoked token",
			},
		),
		TokensRevokedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "underbudget_tokens_revoked_total",
				Help: "Session tokens revoked",
			},
		),
		AuthorizationDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underbudget_authorization_denied_total",
				Help: "Authenticated requests denied access by resource",
			},
			[]string{"resource"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.LoginsTotal,
		m.AuthenticationFailuresTotal,
		m.TokensRevokedTotal,
		m.AuthorizationDeniedTotal,
	)
	return m
}

func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) AuthenticationFailed() {
	if m == nil {
		return
	}
	m.AuthenticationFailuresTotal.Inc()
}

func (m *Metrics) TokenRevoked() {
	if m == nil {
		return
	}
	m.TokensRevokedTotal.Inc()
}

func (m *Metrics) AuthorizationDenied(resource string) {
	if m == nil {
		return
	}
	m.AuthorizationDeniedTotal.WithLabelValues(resource).Inc()
}

// Middleware records request counts and latency labelled by chi route
// pattern, which keeps ids out of the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the gathered metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
