package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2" // duckdb driver
)

// DuckDB implements Adapter on top of an embedded DuckDB database.
type DuckDB struct {
	db     *sql.DB
	config Config
}

// NewDuckDB creates an unconnected DuckDB adapter.
func NewDuckDB() *DuckDB {
	return &DuckDB{}
}

// Connect opens the DuckDB database. An empty path means in-memory.
func (a *DuckDB) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.db = db
	a.config = cfg
	return nil
}

// Close closes the DuckDB connection.
func (a *DuckDB) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Exec executes a SQL statement that returns no rows.
func (a *DuckDB) Exec(ctx context.Context, sqlStr string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if _, err := a.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (a *DuckDB) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// LoadCSV creates or replaces a table from a CSV file using DuckDB's
// read_csv_auto with automatic schema detection.
func (a *DuckDB) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		tableName,
		absPath,
	)
	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV into %s: %w", tableName, err)
	}
	return nil
}

// RowCount returns the number of rows in a table.
func (a *DuckDB) RowCount(ctx context.Context, table string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table) //nolint:gosec // table names come from the fixed pipeline catalog
	if err := a.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

// Ensure DuckDB implements the Adapter interface.
var _ Adapter = (*DuckDB)(nil)
