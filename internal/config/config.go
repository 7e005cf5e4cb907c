package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/FreePeak/turso-mcp-server/pkg/db"
)

// Config holds all server configuration
type Config struct {
	ConfigFile string `envconfig:"CONFIG_FILE" yaml:"-"`

	DatabaseURL  string        `envconfig:"TURSO_DATABASE_URL" default:"http://127.0.0.1:8080" yaml:"database_url"`
	AuthToken    string        `envconfig:"TURSO_AUTH_TOKEN" yaml:"auth_token"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" default:"0s" yaml:"query_timeout"`

	ToolPrefix        string `envconfig:"MCP_TOOL_PREFIX" default:"turso_" yaml:"tool_prefix"`
	StrictIdentifiers bool   `envconfig:"STRICT_IDENTIFIERS" default:"true" yaml:"strict_identifiers"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" yaml:"log_format"`

	MetricsAddr              string `envconfig:"METRICS_ADDR" yaml:"metrics_addr"`
	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" yaml:"otel_exporter_otlp_endpoint"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true" yaml:"otel_exporter_otlp_insecure"`
}

// LoadConfig loads .env files, then the optional YAML file, then environment
// variables. A variable that is set always wins over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if cfg.ConfigFile != "" {
		merged, err := mergeFile(cfg, cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = merged
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile overlays the YAML file on cfg, keeping every field whose
// environment variable is set.
func mergeFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	fromFile := cfg
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
	}

	envValues := reflect.ValueOf(cfg)
	merged := reflect.ValueOf(&fromFile).Elem()
	fields := envValues.Type()
	for i := 0; i < fields.NumField(); i++ {
		key := fields.Field(i).Tag.Get("envconfig")
		if key == "" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			merged.Field(i).Set(envValues.Field(i))
		}
	}
	return fromFile, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("invalid QUERY_TIMEOUT %s: must not be negative", c.QueryTimeout)
	}
	if _, err := db.DriverFor(c.DatabaseURL); err != nil {
		return fmt.Errorf("invalid TURSO_DATABASE_URL: %w", err)
	}
	return nil
}

// Database returns the gateway configuration
func (c *Config) Database() db.Config {
	return db.Config{
		URL:          c.DatabaseURL,
		AuthToken:    c.AuthToken,
		QueryTimeout: c.QueryTimeout,
	}
}
