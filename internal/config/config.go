// Package config loads the board's settings from an optional config.yaml, an
// optional .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Board     BoardConfig     `mapstructure:"board"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	StartupChecks int           `mapstructure:"startup_checks"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

type BoardConfig struct {
	MessageTimeout time.Duration `mapstructure:"message_timeout"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// envAliases are short variable names accepted besides the derived
// SECTION_KEY form.
var envAliases = map[string]string{
	"server.port":             "PORT",
	"upstream.base_url":       "API_BASE_URL",
	"telemetry.otlp_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("upstream.base_url", "http://localhost:8000")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.startup_checks", 5)
	v.SetDefault("upstream.startup_delay", 2*time.Second)
	v.SetDefault("board.message_timeout", 5*time.Second)
	v.SetDefault("board.session_ttl", 30*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("telemetry.service_name", "activity-board")
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// Load reads configuration from ./config.yaml or ./configs/config.yaml when
// present, then applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()
	return load(viper.New(), ".", "./configs")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields the board cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url %q is not an http(s) URL", c.Upstream.BaseURL)
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	if c.Board.MessageTimeout <= 0 {
		return errors.New("board.message_timeout must be positive")
	}
	if c.Board.SessionTTL <= 0 {
		return errors.New("board.session_ttl must be positive")
	}
	return nil
}

// loadEnvFile loads the first .env found in the working directory or at the
// module root. A missing file is not an error.
func loadEnvFile() {
	paths := []string{".env", "../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
