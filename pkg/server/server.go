package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pegelboard/internal/logging"
	"github.com/vango-dev/pegelboard/pkg/format"
	"github.com/vango-dev/pegelboard/pkg/metrics"
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/stations"
	"github.com/vango-dev/pegelboard/pkg/widget"
)

const tracerName = "github.com/vango-dev/pegelboard/pkg/server"

// Options configures a Server.
type Options struct {
	// Source provides the stations. Required.
	Source stations.Source

	// Paths are the outlet paths, one per water ("#RHEIN").
	Paths []string

	// Amounts are the page sizes offered. Default: widget.DefaultAmounts.
	Amounts []int

	// Columns are the table columns. Default: widget.DefaultColumns().
	Columns []widget.Column

	// Params are extra global hash parameters.
	Params param.Schemas

	// Formatter formats table cells. Default: format.Default().
	Formatter *format.Formatter

	// Metrics receives router, session and HTTP metrics. Optional.
	Metrics *metrics.Metrics

	// Gatherer is served on MetricsPath. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// MetricsPath is where metrics are served. Default: "/metrics".
	MetricsPath string

	// ReadTimeout is how long a socket may stay silent. Default: 60s.
	ReadTimeout time.Duration

	// TracerProvider creates session spans. Default: the global provider.
	TracerProvider trace.TracerProvider

	// CheckOrigin validates websocket origins. Default: same origin.
	CheckOrigin func(r *http.Request) bool

	Logger *slog.Logger
}

// Server serves the thin client, its sessions and the JSON API.
type Server struct {
	opts     Options
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server, filling in defaults.
func New(opts Options) *Server {
	if len(opts.Amounts) == 0 {
		opts.Amounts = widget.DefaultAmounts
	}
	if len(opts.Columns) == 0 {
		opts.Columns = widget.DefaultColumns()
	}
	if opts.Formatter == nil {
		opts.Formatter = format.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Server{
		opts:    opts,
		metrics: opts.Metrics,
		tracer:  opts.TracerProvider.Tracer(tracerName),
		logger:  opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/", s.serveThinClient)
	r.Get("/ws", s.HandleWebSocket)
	r.Route("/api/stations", func(r chi.Router) {
		r.Get("/{water}", s.handleStations)
		r.Get("/{water}/{id}", s.handleStationDetails)
	})
	r.Handle(s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
