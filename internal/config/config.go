package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/stations"
	"github.com/vango-dev/pegelboard/pkg/widget"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "pegel.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "pegel.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultSourceURL is the public pegelonline station endpoint.
	DefaultSourceURL = "https://www.pegelonline.wsv.de/webservices/rest-api/v2/stations.json" +
		"?waters={WATER}&ids={IDS}&includeTimeseries=true" +
		"&includeCurrentMeasurement=true&includeCharacteristicValues=true"
)

// fileNames are tried in order by Load.
var fileNames = []string{ConfigFileName, YAMLConfigFileName, "pegel.yml"}

//go:embed schema.json
var schemaJSON string

// Config represents the complete pegel configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `json:"server,omitempty"`

	// Waters are the selectable waters. Each becomes the path "#WATER".
	Waters []string `json:"waters,omitempty"`

	// Amounts are the page sizes offered; the first is the default.
	Amounts []int `json:"amounts,omitempty"`

	// Columns declares the table columns.
	Columns []widget.Column `json:"columns,omitempty"`

	// Source configures where stations come from.
	Source SourceConfig `json:"source,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Params declares extra global hash parameters.
	Params []param.Decl `json:"params,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// ReadTimeout is how long a session socket may stay silent (e.g. "60s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	MetricsPath string `json:"metricsPath,omitempty"`
}

// SourceConfig selects the station source.
type SourceConfig struct {
	// URL is either an HTTP URL template with {WATER} and {IDS}, or an
	// s3://bucket/key URL whose key may contain {WATER}.
	URL string `json:"url,omitempty"`

	// Timeout bounds a single HTTP fetch.
	Timeout string `json:"timeout,omitempty"`

	// CacheTTL is how long fetched stations are reused. "0" caches forever.
	CacheTTL string `json:"cacheTTL,omitempty"`

	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 client settings for s3:// sources.
type S3Config struct {
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory. It looks for
// pegel.json first and pegel.yaml second.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("P121").WithDetail("No pegel.json or pegel.yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .yaml and .yml are YAML, everything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("P121").WithDetail("No configuration at " + path)
		}
		return nil, errors.New("P120").Wrap(err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.New("P120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg, err := decode(doc)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a JSON or YAML document. YAML is a superset of JSON, so
// both go through the YAML decoder.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("P120").WithDetail(err.Error())
	}
	return decode(doc)
}

// decode validates doc against the schema and fills a Config from it.
func decode(doc any) (*Config, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	// Convert to JSON and back so YAML and JSON documents look the same to
	// the schema validator.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.New("P120").Wrap(err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return nil, errors.New("P120").Wrap(err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, errors.New("P120").Wrap(err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, errors.New("P122").WithDetail(schemaErrors(err))
	}

	cfg := &Config{}
	if err := json.Unmarshal(normalized, cfg); err != nil {
		return nil, errors.New("P122").Wrap(err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("pegel.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("pegel.schema.json")
}

// schemaErrors flattens a validation error into "path: message" lines.
func schemaErrors(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var lines []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := strings.TrimPrefix(strings.ReplaceAll(e.InstanceLocation, "/", "."), ".")
			if loc == "" {
				loc = "(root)"
			}
			lines = append(lines, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(lines, "; ")
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "60s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	if len(c.Waters) == 0 {
		c.Waters = []string{"RHEIN", "ELBE", "DONAU", "MOSEL"}
	}
	if len(c.Amounts) == 0 {
		c.Amounts = slices.Clone(widget.DefaultAmounts)
	}
	if len(c.Columns) == 0 {
		c.Columns = widget.DefaultColumns()
	}

	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.Timeout == "" {
		c.Source.Timeout = "30s"
	}
	if c.Source.CacheTTL == "" {
		c.Source.CacheTTL = "5m"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the parts of the configuration the schema cannot.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("P122").WithDetail(detail)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("Port must be between 0 and 65535")
	}
	for name, d := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"source.timeout":         c.Source.Timeout,
		"source.cacheTTL":        c.Source.CacheTTL,
	} {
		if _, err := parseDuration(d); err != nil {
			return invalid(fmt.Sprintf("%s: %v", name, err))
		}
	}

	for _, a := range c.Amounts {
		if a <= 0 {
			return invalid("amounts must be positive")
		}
	}
	for _, col := range c.Columns {
		if !slices.Contains(stations.Columns, col.Name) {
			return invalid(fmt.Sprintf("unknown column %q, expected one of %s", col.Name, strings.Join(stations.Columns, ", ")))
		}
	}

	if c.IsS3() {
		if _, _, err := stations.ParseS3URL(c.Source.URL); err != nil {
			return invalid(err.Error())
		}
	} else if !strings.HasPrefix(c.Source.URL, "http://") && !strings.HasPrefix(c.Source.URL, "https://") {
		return invalid("source.url must be an http(s) or s3 URL")
	}

	if _, err := param.CompileAll(c.Params); err != nil {
		return err
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Paths returns the router paths of the configured waters.
func (c *Config) Paths() []string {
	paths := make([]string, len(c.Waters))
	for i, w := range c.Waters {
		paths[i] = "#" + w
	}
	return paths
}

// IsS3 reports whether stations are read from an S3 snapshot.
func (c *Config) IsS3() bool {
	return strings.HasPrefix(c.Source.URL, "s3://")
}

// ReadTimeout returns the parsed session read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ReadTimeout)
	return d
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout)
	return d
}

// SourceTimeout returns the parsed HTTP fetch timeout.
func (c *Config) SourceTimeout() time.Duration {
	d, _ := parseDuration(c.Source.Timeout)
	return d
}

// CacheTTL returns the parsed cache TTL.
func (c *Config) CacheTTL() time.Duration {
	d, _ := parseDuration(c.Source.CacheTTL)
	return d
}

// parseDuration accepts Go durations and a bare "0".
func parseDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
