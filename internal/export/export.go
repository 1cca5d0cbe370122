// Package export copies billing tables into fixture sinks with every identifier
// replaced by its surrogate.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/metrics"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/storage"
)

// ErrNoSink is returned by Run when neither fixtures nor a destination store is set.
var ErrNoSink = errors.New("no export sink configured")

// FixtureWriter receives the sanitized rows of one table.
type FixtureWriter interface {
	WriteTable(ctx context.Context, table *schema.TableSchema, rows []schema.Row) error
}

// TableReport describes the export of one table.
type TableReport struct {
	Table string
	Rows  int
	// Sanitized counts non-null identifier values that were replaced.
	Sanitized int
}

// Report describes a completed export.
type Report struct {
	Version  schema.Version
	Tables   []TableReport
	Duration time.Duration
}

// Pipeline exports one schema version at a time.
type Pipeline struct {
	source   storage.RowStore
	registry *schema.Registry
	fixtures FixtureWriter
	dest     storage.RowStore
	workers  int
	metrics  *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFixtures writes sanitized tables as fixture documents.
func WithFixtures(w FixtureWriter) Option {
	return func(p *Pipeline) { p.fixtures = w }
}

// WithDestination inserts sanitized rows into another store.
func WithDestination(dest storage.RowStore) Option {
	return func(p *Pipeline) { p.dest = dest }
}

// WithWorkers bounds how many tables are exported concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMetrics records exported rows and sanitized values.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a pipeline reading from source. A nil registry means schema.Default().
func New(source storage.RowStore, registry *schema.Registry, opts ...Option) *Pipeline {
	if registry == nil {
		registry = schema.Default()
	}
	p := &Pipeline{source: source, registry: registry, workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run exports every table of version. The first failing table cancels the others.
func (p *Pipeline) Run(ctx context.Context, version schema.Version) (*Report, error) {
	if p.fixtures == nil && p.dest == nil {
		return nil, ErrNoSink
	}
	tables := p.registry.Tables(version)
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables in version %d", schema.ErrUnknownTable, version)
	}

	start := time.Now()
	slog.Info("Export started", "version", version, "tables", len(tables), "workers", p.workers)

	report := &Report{Version: version, Tables: make([]TableReport, len(tables))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, table := range tables {
		g.Go(func() error {
			tr, err := p.exportTable(ctx, table)
			if err != nil {
				return fmt.Errorf("failed to export %s: %w", table.Name, err)
			}
			report.Tables[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Export failed", "version", version, "error", err)
		return nil, err
	}

	report.Duration = time.Since(start)
	slog.Info("Export completed", "version", version, "duration_ms", report.Duration.Milliseconds())
	return report, nil
}

func (p *Pipeline) exportTable(ctx context.Context, table *schema.TableSchema) (TableReport, error) {
	tr := TableReport{Table: table.Name}
	identifiers := table.Identifiers()

	var rows []schema.Row
	err := p.source.ScanRows(ctx, table.Name, table.ColumnNames(), func(row schema.Row) error {
		for _, c := range identifiers {
			if row[c.Name] != nil {
				tr.Sanitized++
			}
		}
		rows = append(rows, table.SanitizeRow(row))
		return nil
	})
	if err != nil {
		return tr, err
	}
	tr.Rows = len(rows)

	if p.fixtures != nil {
		if err := p.fixtures.WriteTable(ctx, table, rows); err != nil {
			return tr, err
		}
	}
	if p.dest != nil {
		if err := p.dest.InsertRows(ctx, table.Name, table.ColumnNames(), rows); err != nil {
			return tr, err
		}
	}

	p.metrics.ObserveRows(table.Name, tr.Rows, tr.Sanitized)
	slog.Debug("Table exported", "table", table.Name, "rows", tr.Rows, "sanitized", tr.Sanitized)
	return tr, nil
}
