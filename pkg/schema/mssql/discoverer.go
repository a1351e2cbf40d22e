// Package mssql implements schema.Provider against a SQL Server warehouse
// using its system catalog views.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/logging"
	"github.com/contoso-bi/nlsql-engine/pkg/schema"
)

// Discoverer reads table and column metadata from sys.tables/sys.columns.
// The connection is owned by the discoverer and must be closed when done.
type Discoverer struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDiscoverer opens a connection to the warehouse and verifies it.
func NewDiscoverer(ctx context.Context, connString string, logger *zap.Logger) (*Discoverer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse %s: %w",
			logging.SanitizeConnectionString(connString), err)
	}

	return &Discoverer{db: db, logger: logger.Named("mssql")}, nil
}

// ListTables implements schema.Provider. System tables are excluded.
func (d *Discoverer) ListTables(ctx context.Context) ([]string, error) {
	query := `
	SET NOCOUNT ON;
	SELECT t.name
	FROM sys.tables t
	WHERE t.is_ms_shipped = 0
	ORDER BY t.name
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}

	return names, nil
}

// Columns implements schema.Provider.
func (d *Discoverer) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	query := `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS data_type,
	    CASE WHEN c.is_nullable = 1 THEN 1 ELSE 0 END AS is_nullable
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	WHERE c.object_id = OBJECT_ID(QUOTENAME(@table))
	ORDER BY c.column_id
	`

	rows, err := d.db.QueryContext(ctx, query, sql.Named("table", table))
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable int
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		col.Nullable = nullable == 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}

	return columns, nil
}

// Close releases the warehouse connection.
func (d *Discoverer) Close() error {
	return d.db.Close()
}

// Ensure Discoverer implements schema.Provider at compile time.
var _ schema.Provider = (*Discoverer)(nil)
