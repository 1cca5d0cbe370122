// Package fixture stores sanitized table rows as JSON Lines documents.
//
// Each table is written to <baseURL>/<table>.jsonl with one JSON object per row and
// keys in schema column order. Any location supported by github.com/viant/afs can be
// used as baseURL (local paths, file://, mem://, object stores).
package fixture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

const extension = ".jsonl"

// Service reads and writes fixture documents under a base URL.
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

// New creates a fixture service rooted at baseURL, creating the location if needed.
func New(ctx context.Context, baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("fixture base URL cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)

	exists, err := fs.Exists(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check fixture location: %w", err)
	}
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create fixture location %s: %w", baseURL, err)
		}
	}

	return &Service{baseURL: baseURL, fs: fs}, nil
}

// URL returns the location of a table's fixture document.
func (s *Service) URL(table string) string {
	return url.Join(s.baseURL, table+extension)
}

// WriteTable replaces the fixture document for table with rows.
func (s *Service) WriteTable(ctx context.Context, table *schema.TableSchema, rows []schema.Row) error {
	var buf bytes.Buffer
	for _, row := range rows {
		if err := encodeRow(&buf, table.Columns, row); err != nil {
			return fmt.Errorf("failed to encode %s row: %w", table.Name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.URL(table.Name)
	if err := s.fs.Upload(ctx, target, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("failed to write fixture %s: %w", target, err)
	}
	return nil
}

// encodeRow writes row as a single-line JSON object with keys in column order.
func encodeRow(buf *bytes.Buffer, columns []schema.Column, row schema.Row) error {
	buf.WriteByte('{')
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		value, err := json.Marshal(row[c.Name])
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}\n")
	return nil
}

// ReadTable loads the fixture document for table. Whole numbers decode as int64,
// other numbers as float64.
func (s *Service) ReadTable(ctx context.Context, table string) ([]schema.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source := s.URL(table)
	exists, err := s.fs.Exists(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to check fixture %s: %w", source, err)
	}
	if !exists {
		return nil, fmt.Errorf("fixture not found: %s", source)
	}

	data, err := s.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", source, err)
	}

	var rows []schema.Row
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text))
		decoder.UseNumber()
		var row schema.Row
		if err := decoder.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode %s line %d: %w", source, line, err)
		}
		for k, v := range row {
			if n, ok := v.(json.Number); ok {
				row[k] = number(n)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}
	return rows, nil
}

func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
