package stations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pegelboard/internal/errors"
)

// Placeholders substituted in source templates.
const (
	PlaceholderWater = "{WATER}"
	PlaceholderIDs   = "{IDS}"
)

const tracerName = "github.com/vango-dev/pegelboard/pkg/stations"

// Source fetches the stations of a water. ids restricts the result to the
// named stations; an empty ids means all of them.
type Source interface {
	Fetch(ctx context.Context, water string, ids []string) ([]Station, error)
}

// Observer is told about every fetch a source performs.
type Observer interface {
	SourceFetched(source string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) SourceFetched(string, time.Duration, error) {}

// Option configures a source.
type Option func(*sourceConfig)

type sourceConfig struct {
	client   *http.Client
	observer Observer
	tracer   trace.Tracer
}

func newSourceConfig(opts []Option) sourceConfig {
	cfg := sourceConfig{
		client:   &http.Client{Timeout: 30 * time.Second},
		observer: nopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithHTTPClient sets the client HTTPSource uses.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *sourceConfig) {
		if c != nil {
			cfg.client = c
		}
	}
}

// WithObserver reports fetches to o.
func WithObserver(o Observer) Option {
	return func(cfg *sourceConfig) {
		if o != nil {
			cfg.observer = o
		}
	}
}

// WithTracerProvider sets the provider fetch spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *sourceConfig) {
		if tp != nil {
			cfg.tracer = tp.Tracer(tracerName)
		}
	}
}

// observe wraps one fetch with a span and an observer notification.
func (cfg sourceConfig) observe(ctx context.Context, source, water string, ids []string, fetch func(context.Context) ([]Station, error)) ([]Station, error) {
	ctx, span := cfg.tracer.Start(ctx, "stations.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("pegel.source", source),
			attribute.String("pegel.water", water),
			attribute.StringSlice("pegel.station_ids", ids),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := fetch(ctx)
	cfg.observer.SourceFetched(source, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("pegel.station_count", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// HTTPSource reads stations from an HTTP API. The URL template may contain
// {WATER} and {IDS}; ids are joined with commas.
type HTTPSource struct {
	template string
	cfg      sourceConfig
}

// NewHTTPSource returns a source for the given URL template.
func NewHTTPSource(template string, opts ...Option) *HTTPSource {
	return &HTTPSource{template: template, cfg: newSourceConfig(opts)}
}

// URL expands the template for water and ids.
func (s *HTTPSource) URL(water string, ids []string) string {
	r := strings.NewReplacer(
		PlaceholderWater, url.PathEscape(water),
		PlaceholderIDs, url.QueryEscape(strings.Join(ids, ",")),
	)
	return r.Replace(s.template)
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, water string, ids []string) ([]Station, error) {
	return s.cfg.observe(ctx, "http", water, ids, func(ctx context.Context) ([]Station, error) {
		target := s.URL(water, ids)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, errors.New("P140").WithDetail(target).Wrap(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := s.cfg.client.Do(req)
		if err != nil {
			return nil, errors.New("P140").WithDetail(target).Wrap(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errors.New("P140").WithDetail(fmt.Sprintf("%s returned %s", target, resp.Status))
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.New("P140").WithDetail(target).Wrap(err)
		}
		out, err := Decode(body)
		if err != nil {
			return nil, errors.New("P141").Wrap(err)
		}
		return out, nil
	})
}
