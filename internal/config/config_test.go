package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/param"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Source.URL != DefaultSourceURL {
		t.Errorf("Source.URL = %q, want %q", cfg.Source.URL, DefaultSourceURL)
	}
	if len(cfg.Columns) != 5 {
		t.Errorf("len(Columns) = %d, want 5", len(cfg.Columns))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if errors.CodeOf(err) != "P121" {
		t.Errorf("missing config: code = %q, want P121", errors.CodeOf(err))
	}

	configJSON := `{
  "server": {"host": "0.0.0.0", "port": 9090, "readTimeout": "2m"},
  "waters": ["RHEIN", "ELBE"],
  "amounts": [10, 20],
  "source": {"url": "https://example.org/{WATER}.json?ids={IDS}", "cacheTTL": "0"},
  "params": [{"name": "lang", "values": ["de", "en"], "default": "de"}]
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Address() != "0.0.0.0:9090" {
		t.Errorf("Address() = %q, want %q", cfg.Address(), "0.0.0.0:9090")
	}
	if cfg.ReadTimeout() != 2*time.Minute {
		t.Errorf("ReadTimeout() = %v, want 2m", cfg.ReadTimeout())
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("CacheTTL() = %v, want 0", cfg.CacheTTL())
	}
	if got := strings.Join(cfg.Paths(), ","); got != "#RHEIN,#ELBE" {
		t.Errorf("Paths() = %q", got)
	}
	if len(cfg.Amounts) != 2 || cfg.Amounts[0] != 10 {
		t.Errorf("Amounts = %v", cfg.Amounts)
	}
	if cfg.Server.MetricsPath != DefaultMetricsPath {
		t.Errorf("MetricsPath default not applied: %q", cfg.Server.MetricsPath)
	}
	if len(cfg.Params) != 1 || cfg.Params[0].Name != "lang" {
		t.Errorf("Params = %+v", cfg.Params)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `
server:
  port: 7070
waters: [MOSEL]
columns:
  - name: name
    label: Station
    sortable: true
  - name: timestamp
    formatter: dateTime
source:
  url: s3://pegel-snapshots/{WATER}.json
  s3:
    region: eu-west-1
    pathStyle: true
log:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Fatal("Exists() = false")
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if !cfg.IsS3() {
		t.Error("IsS3() = false")
	}
	if !cfg.Source.S3.PathStyle || cfg.Source.S3.Region != "eu-west-1" {
		t.Errorf("S3 = %+v", cfg.Source.S3)
	}
	if len(cfg.Columns) != 2 || cfg.Columns[1].Formatter != "dateTime" || !cfg.Columns[0].Sortable {
		t.Errorf("Columns = %+v", cfg.Columns)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSchemaRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`{"server": {"prot": 80}}`))
	if errors.CodeOf(err) != "P122" {
		t.Fatalf("code = %q, want P122 (err: %v)", errors.CodeOf(err), err)
	}
	if pe, ok := err.(*errors.PegelError); !ok || !strings.Contains(pe.Detail, "server") {
		t.Errorf("error should name the location: %#v", err)
	}
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"port string", `server: {port: "80"}`},
		{"port range", `server: {port: 70000}`},
		{"amount zero", `amounts: [0]`},
		{"log level", `log: {level: loud}`},
		{"param without name", `params: [{type: int}]`},
		{"metrics path", `server: {metricsPath: metrics}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); errors.CodeOf(err) != "P122" {
				t.Errorf("code = %q, want P122 (err: %v)", errors.CodeOf(err), err)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("server: [unclosed"))
	if errors.CodeOf(err) != "P120" {
		t.Errorf("code = %q, want P120", errors.CodeOf(err))
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("defaults not applied: %+v", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad duration", func(c *Config) { c.Source.CacheTTL = "soon" }},
		{"bad amount", func(c *Config) { c.Amounts = []int{25, -5} }},
		{"unknown column", func(c *Config) { c.Columns[0].Name = "river" }},
		{"bad source", func(c *Config) { c.Source.URL = "ftp://example.org" }},
		{"bad s3 url", func(c *Config) { c.Source.URL = "s3://bucket-only" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); errors.CodeOf(err) != "P122" {
				t.Errorf("code = %q, want P122 (err: %v)", errors.CodeOf(err), err)
			}
		})
	}
}

func TestValidateParams(t *testing.T) {
	cfg := New()
	cfg.Params = []param.Decl{{Name: "limit", Type: "int", Validate: "value >"}}
	if err := cfg.Validate(); errors.CodeOf(err) != "P102" {
		t.Errorf("code = %q, want P102 (err: %v)", errors.CodeOf(err), err)
	}
}
