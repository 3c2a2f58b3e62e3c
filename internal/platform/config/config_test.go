package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sleeptrack/internal/platform/config"
	apperrors "sleeptrack/internal/platform/errors"
)

func TestNewDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "sleeptrack.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Locale != "en-US" || cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	file := "locale: de-DE\nlog_level: debug\ndb_path: nights.db\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(file), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLEEPTRACK_LOG_FORMAT", "json")
	t.Setenv("SLEEPTRACK_LOG_LEVEL", "warn")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Locale != "de-DE" {
		t.Fatalf("expected locale from file, got %s", cfg.Locale)
	}
	if cfg.DBPath != filepath.Join(dir, "nights.db") {
		t.Fatalf("expected relative db path resolved against data dir, got %s", cfg.DBPath)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "warn" {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
}

func TestInvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SLEEPTRACK_LOG_FORMAT", "xml")
	if _, err := config.New(dir); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("locale: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}
