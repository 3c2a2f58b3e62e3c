package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	apperrors "sleeptrack/internal/platform/errors"
)

const (
	EnvPrefix  = "SLEEPTRACK_"
	FileName   = "config.yaml"
	dbFileName = "sleeptrack.db"
)

type Config struct {
	DataDir     string `yaml:"-"`
	DBPath      string `yaml:"db_path" env:"DB_PATH"`
	Locale      string `yaml:"locale" env:"LOCALE"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// New resolves configuration for dataDir: defaults, then <dataDir>/config.yaml,
// then SLEEPTRACK_* environment variables. An empty dataDir means ~/.sleeptrack.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".sleeptrack")
	}
	cfg := Config{
		DataDir:   dataDir,
		DBPath:    filepath.Join(dataDir, dbFileName),
		Locale:    "en-US",
		LogLevel:  "info",
		LogFormat: "text",
	}
	if err := cfg.loadFile(filepath.Join(dataDir, FileName)); err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if c.DBPath != "" && !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(c.DataDir, c.DBPath)
	}
	return nil
}

// Validate checks the resolved values. Callers that override fields after New
// must run it again.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", apperrors.ErrInvalidInput, c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", apperrors.ErrInvalidInput, c.LogLevel)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%w: db path is required", apperrors.ErrInvalidInput)
	}
	return nil
}
