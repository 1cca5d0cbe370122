package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 8080 || cfg.SchemaVersion != schema.Latest || cfg.ExportWorkers != 4 ||
			cfg.TokenDuration != 24*time.Hour || cfg.JWTSecret != "" || cfg.LogLevel != "info" {
			t.Errorf("Unexpected defaults: %+v", cfg)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("SCHEMA_VERSION", "1")
		t.Setenv("FIXTURE_URL", "mem://localhost/fixtures")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 9090 || cfg.SchemaVersion != schema.V1 || cfg.FixtureURL != "mem://localhost/fixtures" {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(envFile, []byte("EXPORT_WORKERS=7\nJWT_SECRET=from-file\n"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		t.Setenv("EXPORT_WORKERS", "")
		t.Setenv("JWT_SECRET", "")
		os.Unsetenv("EXPORT_WORKERS")
		os.Unsetenv("JWT_SECRET")

		cfg, err := Load(envFile)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ExportWorkers != 7 || cfg.JWTSecret != "from-file" {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("invalid number", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
			t.Error("Expected error for invalid PORT")
		}
	})
}
