package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/config"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/export"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/fixture"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/metrics"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/seed"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage/sqlite"
	"github.com/MatrixManAtYrService/rhizome-sub001/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "source billing database")
	destPath := flag.String("dest", cfg.ExportDBPath, "sanitized destination database (optional)")
	fixtureURL := flag.String("fixtures", cfg.FixtureURL, "fixture location, local path or afs URL (optional)")
	version := flag.Int("version", int(cfg.SchemaVersion), "schema version to export")
	workers := flag.Int("workers", cfg.ExportWorkers, "tables exported concurrently")
	seedCount := flag.Int("seed", 0, "generate this many sample billing entities before exporting")
	seedValue := flag.Uint64("seed-value", 1, "random seed for sample amounts and statuses")
	logLevel := flag.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	logging.Setup(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, runOptions{
		dbPath:     *dbPath,
		destPath:   *destPath,
		fixtureURL: *fixtureURL,
		version:    schema.Version(*version),
		workers:    *workers,
		seedCount:  *seedCount,
		seedValue:  *seedValue,
	}); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	dbPath     string
	destPath   string
	fixtureURL string
	version    schema.Version
	workers    int
	seedCount  int
	seedValue  uint64
}

func run(ctx context.Context, o runOptions) error {
	source, err := sqlite.New(o.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()
	slog.Info("Source opened", "database", o.dbPath)

	if o.seedCount > 0 {
		if _, err := seed.Generate(ctx, source, o.seedCount, o.seedValue); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	opts := []export.Option{
		export.WithWorkers(o.workers),
		export.WithMetrics(metrics.New(registry)),
	}

	if o.fixtureURL != "" {
		fixtures, err := fixture.New(ctx, o.fixtureURL)
		if err != nil {
			return err
		}
		opts = append(opts, export.WithFixtures(fixtures))
		slog.Info("Writing fixtures", "url", o.fixtureURL)
	}

	if o.destPath != "" {
		dest, err := sqlite.New(o.destPath, sqlite.WithForeignKeys(false))
		if err != nil {
			return fmt.Errorf("failed to open destination database: %w", err)
		}
		defer dest.Close()
		opts = append(opts, export.WithDestination(dest))
		slog.Info("Writing destination database", "database", o.destPath)
	}

	report, err := export.New(source, nil, opts...).Run(ctx, o.version)
	if err != nil {
		return err
	}

	for _, t := range report.Tables {
		slog.Info("Table exported", "table", t.Table, "rows", t.Rows, "sanitized", t.Sanitized)
	}
	return nil
}
