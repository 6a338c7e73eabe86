// Package metrics exposes Prometheus collectors for router activity,
// sessions, station fetches and HTTP requests.
//
// Metrics collected (namespace "pegel" by default):
//   - pegel_navigations_total: path changes by target path
//   - pegel_param_changes_total: accepted parameter writes by name
//   - pegel_param_rejections_total: parameters dropped by their validator
//   - pegel_history_writes_total: hash writes by mode (push, replace)
//   - pegel_active_sessions: open session sockets
//   - pegel_source_fetches_total: station fetches by source and status
//   - pegel_source_fetch_duration_seconds: station fetch latency
//   - pegel_http_requests_total: HTTP requests by route and status
//
// Example:
//
//	m := metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
//	r := router.New(hash, router.WithObserver(m))
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/pegelboard/pkg/router"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "pegel").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for fetch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "pegel",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors. It implements router.Observer and is safe
// for concurrent use by many sessions.
type Metrics struct {
	navigations     *prometheus.CounterVec
	paramChanges    *prometheus.CounterVec
	paramRejections *prometheus.CounterVec
	historyWrites   *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	sourceFetches   *prometheus.CounterVec
	sourceDuration  *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

var _ router.Observer = (*Metrics)(nil)

// New registers the collectors and returns them.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "navigations_total",
			Help:        "Total number of path changes by target path",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),

		paramChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "param_changes_total",
			Help:        "Total number of accepted parameter writes",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		paramRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "param_rejections_total",
			Help:        "Total number of parameter values rejected by their validator",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		historyWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "history_writes_total",
			Help:        "Total number of hash writes by history mode",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of open session sockets",
			ConstLabels: config.ConstLabels,
		}),

		sourceFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "source_fetches_total",
			Help:        "Total number of station fetches by source and status",
			ConstLabels: config.ConstLabels,
		}, []string{"source", "status"}),

		sourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "source_fetch_duration_seconds",
			Help:        "Station fetch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"source"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by route pattern and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),
	}
}

// Navigated implements router.Observer.
func (m *Metrics) Navigated(_, to string) {
	m.navigations.WithLabelValues(to).Inc()
}

// ParamsChanged implements router.Observer. A hashchange reconciliation
// reports no names and is counted under "*".
func (m *Metrics) ParamsChanged(_ string, names []string) {
	if len(names) == 0 {
		m.paramChanges.WithLabelValues("*").Inc()
		return
	}
	for _, name := range names {
		m.paramChanges.WithLabelValues(name).Inc()
	}
}

// ParamRejected implements router.Observer.
func (m *Metrics) ParamRejected(_, name string) {
	m.paramRejections.WithLabelValues(name).Inc()
}

// HistoryWritten implements router.Observer.
func (m *Metrics) HistoryWritten(mode router.Mode) {
	m.historyWrites.WithLabelValues(mode.String()).Inc()
}

// SessionOpened records a new session socket.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records a closed session socket.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// SourceFetched records one station fetch.
func (m *Metrics) SourceFetched(source string, took time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.sourceFetches.WithLabelValues(source, status).Inc()
	m.sourceDuration.WithLabelValues(source).Observe(took.Seconds())
}

// Middleware counts HTTP requests by chi route pattern, which keeps label
// cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
