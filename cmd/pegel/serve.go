package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/pegelboard/internal/config"
	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/internal/logging"
	"github.com/vango-dev/pegelboard/pkg/format"
	"github.com/vango-dev/pegelboard/pkg/metrics"
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/server"
	"github.com/vango-dev/pegelboard/pkg/stations"
)

type serveFlags struct {
	configFile string
	dir        string
	port       int
	host       string
	logLevel   string
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the station table server",
		Long: `Start the HTTP server with the thin client, the session socket,
the JSON API and the metrics endpoint.

Configuration is read from pegel.json or pegel.yaml in the working
directory unless --config or --dir is given. Without any config file
the built-in defaults are used.

Examples:
  pegel serve
  pegel serve --port=9090
  pegel serve --config=/etc/pegel/pegel.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Config file (pegel.json or pegel.yaml)")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", ".", "Directory to look for the config file in")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&flags.host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

func loadConfig(flags serveFlags) (*config.Config, error) {
	switch {
	case flags.configFile != "":
		return config.LoadFile(flags.configFile)
	case config.Exists(flags.dir):
		return config.Load(flags.dir)
	default:
		return config.New(), nil
	}
}

func runServe(ctx context.Context, flags serveFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if flags.port > 0 {
		cfg.Server.Port = flags.port
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metrics.WithRegistry(reg))

	src, err := newSource(cfg, m)
	if err != nil {
		return err
	}
	extra, err := param.CompileAll(cfg.Params)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Source:         src,
		Paths:          cfg.Paths(),
		Amounts:        cfg.Amounts,
		Columns:        cfg.Columns,
		Params:         extra,
		Formatter:      format.Default(),
		Metrics:        m,
		Gatherer:       reg,
		MetricsPath:    cfg.Server.MetricsPath,
		ReadTimeout:    cfg.ReadTimeout(),
		TracerProvider: otel.GetTracerProvider(),
		Logger:         logger,
	})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	success("Serving %s", strings.Join(cfg.Waters, ", "))
	info("http://%s", cfg.Address())
	if path := cfg.Path(); path != "" {
		info("config: %s", path)
	}
	fmt.Println()

	err = srv.ListenAndServe(ctx, cfg.Address(), cfg.ShutdownTimeout())
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newSource builds the configured station source behind a cache.
func newSource(cfg *config.Config, m *metrics.Metrics) (stations.Source, error) {
	opts := []stations.Option{
		stations.WithObserver(m),
		stations.WithTracerProvider(otel.GetTracerProvider()),
	}

	var src stations.Source
	if cfg.IsS3() {
		bucket, key, err := stations.ParseS3URL(cfg.Source.URL)
		if err != nil {
			return nil, errors.New("P122").Wrap(err)
		}
		client := stations.NewS3Client(stations.S3ClientOptions{
			Region:    cfg.Source.S3.Region,
			Endpoint:  cfg.Source.S3.Endpoint,
			AccessKey: cfg.Source.S3.AccessKey,
			SecretKey: cfg.Source.S3.SecretKey,
			PathStyle: cfg.Source.S3.PathStyle,
		})
		src = stations.NewS3Source(client, bucket, key, opts...)
	} else {
		opts = append(opts, stations.WithHTTPClient(&http.Client{Timeout: cfg.SourceTimeout()}))
		src = stations.NewHTTPSource(cfg.Source.URL, opts...)
	}
	return stations.NewCachedSource(src, cfg.CacheTTL()), nil
}
