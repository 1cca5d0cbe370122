// Package config reads settings from the environment.
//
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

// Config holds the settings shared by the binaries.
type Config struct {
	// Port the sanitize service listens on.
	Port int

	// DBPath is the source billing database.
	DBPath string

	// ExportDBPath is the sanitized destination database; empty disables it.
	ExportDBPath string

	// FixtureURL is where fixture documents are written; empty disables them.
	FixtureURL string

	SchemaVersion schema.Version
	ExportWorkers int

	// JWTSecret enables bearer token auth on the service when set.
	JWTSecret     string
	TokenDuration time.Duration

	LogLevel string
}

// Load reads the configuration, loading envFiles (default ".env") first.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:       getEnv("DB_PATH", "./data/billing.db"),
		ExportDBPath: getEnv("EXPORT_DB_PATH", ""),
		FixtureURL:   getEnv("FIXTURE_URL", "./data/fixtures"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	version, err := getEnvInt("SCHEMA_VERSION", int(schema.Latest))
	if err != nil {
		return nil, err
	}
	cfg.SchemaVersion = schema.Version(version)
	if cfg.ExportWorkers, err = getEnvInt("EXPORT_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.TokenDuration, err = time.ParseDuration(getEnv("TOKEN_DURATION", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_DURATION: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
