// Package schema holds the read-only warehouse catalog snapshot used for
// fuzzy identifier repair and for building LLM schema context.
package schema

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
	"github.com/contoso-bi/nlsql-engine/pkg/retry"
)

// Column describes one column of a catalog table.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

// Table describes one catalog table with its columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Catalog is an immutable snapshot of the warehouse schema. It is built
// once per refresh and shared read-only across concurrent requests.
type Catalog struct {
	tables  []Table
	byLower map[string]*Table
}

// NewCatalog builds a snapshot from a table list. The input is copied; the
// catalog never mutates after construction.
func NewCatalog(tables []Table) *Catalog {
	c := &Catalog{
		tables:  make([]Table, len(tables)),
		byLower: make(map[string]*Table, len(tables)),
	}
	copy(c.tables, tables)
	for i := range c.tables {
		c.byLower[strings.ToLower(c.tables[i].Name)] = &c.tables[i]
	}
	return c
}

// TableNames returns the canonical table names in catalog order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

// Lookup resolves a table name case-insensitively, returning the canonical
// table and whether it exists.
func (c *Catalog) Lookup(name string) (*Table, bool) {
	t, ok := c.byLower[strings.ToLower(name)]
	return t, ok
}

// Tables returns all tables in catalog order.
func (c *Catalog) Tables() []Table {
	return c.tables
}

// Provider supplies catalog contents, typically from the warehouse's
// system views.
type Provider interface {
	// ListTables returns all analytical table names.
	ListTables(ctx context.Context) ([]string, error)

	// Columns returns the column definitions for one table.
	Columns(ctx context.Context, table string) ([]Column, error)
}

// Store holds the current catalog snapshot. Refresh swaps the snapshot
// atomically; readers always see a complete catalog, never a partial one.
type Store struct {
	provider Provider
	current  atomic.Pointer[Catalog]
	logger   *zap.Logger
}

// NewStore creates a store with no snapshot loaded. Call Refresh (or Seed)
// before serving requests.
func NewStore(provider Provider, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		provider: provider,
		logger:   logger.Named("schema"),
	}
}

// Seed installs a pre-built catalog, used at startup before the first
// warehouse refresh and in tests.
func (s *Store) Seed(c *Catalog) {
	s.current.Store(c)
}

// Current returns the active snapshot.
func (s *Store) Current() (*Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, apperrors.ErrCatalogUnavailable
	}
	return c, nil
}

// Refresh rebuilds the snapshot from the provider and swaps it in. On
// error the previous snapshot stays active. Transient warehouse failures
// are retried; permanent ones (bad credentials, missing database) fail the
// refresh immediately.
func (s *Store) Refresh(ctx context.Context) error {
	return retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		names, err := s.provider.ListTables(ctx)
		if err != nil {
			return err
		}

		tables := make([]Table, 0, len(names))
		for _, name := range names {
			cols, err := s.provider.Columns(ctx, name)
			if err != nil {
				return err
			}
			tables = append(tables, Table{Name: name, Columns: cols})
		}

		s.current.Store(NewCatalog(tables))
		s.logger.Info("catalog refreshed", zap.Int("tables", len(tables)))
		return nil
	})
}
