// Package schema describes which columns each billing table has per schema version
// and which of them hold identifiers.
//
// A table's layout in a given version is a TableSchema selected by (name, Version).
// Later versions may extend an earlier version of the same table by appending
// columns. The built-in registry is embedded from registry.yaml.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"
)

// Version identifies a schema revision.
type Version int

const (
	V1 Version = 1
	V2 Version = 2

	// Latest is the newest version the storage layer creates tables for.
	Latest = V2
)

// Kind says how a column is treated on export.
type Kind string

const (
	// Passthrough columns are copied unchanged.
	Passthrough Kind = "passthrough"
	// Identifier columns are replaced by a surrogate of Column.Length characters.
	Identifier Kind = "identifier"
)

// ErrUnknownTable is returned when no schema exists for a table and version.
var ErrUnknownTable = errors.New("unknown table")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Column describes one column of a table.
type Column struct {
	Name   string `yaml:"name"`
	Kind   Kind   `yaml:"kind,omitempty"`
	Length int    `yaml:"length,omitempty"`
}

// TableSchema is the column set of a table in one schema version.
type TableSchema struct {
	Name    string
	Version Version
	Columns []Column
}

// Row is a table row keyed by column name.
type Row map[string]any

// ColumnNames returns the column names in declaration order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Identifiers returns the identifier columns.
func (t *TableSchema) Identifiers() []Column {
	var result []Column
	for _, c := range t.Columns {
		if c.Kind == Identifier {
			result = append(result, c)
		}
	}
	return result
}

// SanitizeRow returns a new row holding only this table's columns, with identifier
// columns replaced by surrogates. Columns missing from row are set to nil.
func (t *TableSchema) SanitizeRow(row Row) Row {
	result := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		value := row[c.Name]
		if c.Kind == Identifier {
			value = sanitize.Value(value, c.Length)
		}
		result[c.Name] = value
	}
	return result
}

type registryDoc struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name    string   `yaml:"name"`
	Version Version  `yaml:"version"`
	Extends Version  `yaml:"extends,omitempty"`
	Columns []Column `yaml:"columns"`
}

type tableKey struct {
	name    string
	version Version
}

// Registry holds table schemas for every known version.
type Registry struct {
	tables map[tableKey]*TableSchema
	order  map[Version][]*TableSchema
}

// Load parses and validates a registry document.
func Load(data []byte) (*Registry, error) {
	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema registry: %w", err)
	}

	r := &Registry{
		tables: make(map[tableKey]*TableSchema),
		order:  make(map[Version][]*TableSchema),
	}
	for _, td := range doc.Tables {
		table, err := r.build(td)
		if err != nil {
			return nil, err
		}
		r.tables[tableKey{table.Name, table.Version}] = table
		r.order[table.Version] = append(r.order[table.Version], table)
	}
	return r, nil
}

func (r *Registry) build(td tableDoc) (*TableSchema, error) {
	if !identPattern.MatchString(td.Name) {
		return nil, fmt.Errorf("invalid table name %q", td.Name)
	}
	if td.Version <= 0 {
		return nil, fmt.Errorf("table %s: invalid version %d", td.Name, td.Version)
	}
	if _, ok := r.tables[tableKey{td.Name, td.Version}]; ok {
		return nil, fmt.Errorf("table %s: version %d declared twice", td.Name, td.Version)
	}

	table := &TableSchema{Name: td.Name, Version: td.Version}
	if td.Extends != 0 {
		base, ok := r.tables[tableKey{td.Name, td.Extends}]
		if !ok {
			return nil, fmt.Errorf("table %s: version %d extends undeclared version %d", td.Name, td.Version, td.Extends)
		}
		table.Columns = append(table.Columns, base.Columns...)
	}

	seen := make(map[string]bool, len(table.Columns)+len(td.Columns))
	for _, c := range table.Columns {
		seen[c.Name] = true
	}
	for _, c := range td.Columns {
		if !identPattern.MatchString(c.Name) {
			return nil, fmt.Errorf("table %s: invalid column name %q", td.Name, c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("table %s: duplicate column %q", td.Name, c.Name)
		}
		seen[c.Name] = true

		switch c.Kind {
		case "":
			c.Kind = Passthrough
		case Passthrough:
		case Identifier:
			if c.Length <= 0 {
				return nil, fmt.Errorf("table %s: identifier column %q needs a positive length", td.Name, c.Name)
			}
		default:
			return nil, fmt.Errorf("table %s: column %q has unknown kind %q", td.Name, c.Name, c.Kind)
		}
		table.Columns = append(table.Columns, c)
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table %s: no columns", td.Name)
	}
	return table, nil
}

// Lookup returns the schema of table in version.
func (r *Registry) Lookup(table string, version Version) (*TableSchema, error) {
	t, ok := r.tables[tableKey{table, version}]
	if !ok {
		return nil, fmt.Errorf("%w: %s (version %d)", ErrUnknownTable, table, version)
	}
	return t, nil
}

// Tables returns every table of version in declaration order.
func (r *Registry) Tables(version Version) []*TableSchema {
	return r.order[version]
}

//go:embed registry.yaml
var builtin []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in registry. It panics if the embedded document is
// invalid, which registry tests guard against.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(builtin)
		if err != nil {
			panic(fmt.Sprintf("schema: invalid built-in registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
