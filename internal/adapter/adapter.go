// Package adapter provides the warehouse database interface and its DuckDB
// implementation. The pipeline loads raw tables and quality outputs through
// it and runs the transformation and insight SQL against it.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the connection settings for a warehouse database.
type Config struct {
	// Path is the database file path. Use ":memory:" for an in-memory
	// database.
	Path string
}

// Rows wraps sql.Rows so callers do not depend on a concrete driver.
type Rows struct {
	*sql.Rows
}

// Adapter is the warehouse capability the pipeline needs.
type Adapter interface {
	// Connect establishes the database connection.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a statement that returns rows. The caller must close
	// the result and check Err after iterating.
	Query(ctx context.Context, sql string) (*Rows, error)

	// LoadCSV creates or replaces tableName from a CSV file, inferring the
	// schema from the file.
	LoadCSV(ctx context.Context, tableName, filePath string) error

	// RowCount returns the number of rows in a table.
	RowCount(ctx context.Context, table string) (int64, error)
}
