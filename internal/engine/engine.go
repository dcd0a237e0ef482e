// Package engine orchestrates the order-to-insight pipeline stages:
// synthetic data generation, ingestion with quality checks, warehouse
// load, SQL transformations, and insight queries. Stages are explicit
// method calls; sequencing them is the CLI's job.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ordersight-labs/ordersight/internal/adapter"
	"github.com/ordersight-labs/ordersight/internal/state"
)

// Raw layer file and warehouse table names.
const (
	ordersFile = "orders.csv"
	eventsFile = "order_events.csv"

	rawOrdersTable = "raw_orders"
	rawEventsTable = "raw_order_events"
	reportTable    = "dq_report"
	samplesTable   = "dq_failed_samples"
)

// Config holds engine configuration.
type Config struct {
	// DataDir is the root of the data layout (raw/ and processed/ below it).
	DataDir string
	// TransformationsDir holds the SQL model files.
	TransformationsDir string
	// AnalysisDir holds the insight SQL.
	AnalysisDir string
	// DatabasePath is the DuckDB warehouse file (empty for in-memory).
	DatabasePath string
	// StatePath is the SQLite run-history database.
	StatePath string
	// Mode is dev or prod; prod gates the run on critical quality failures.
	Mode string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs pipeline stages against the warehouse.
type Engine struct {
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	store  state.Store
	logger *slog.Logger

	dataDir            string
	transformationsDir string
	analysisDir        string
	mode               string
}

// New creates an engine with a lazy warehouse connection. The run-history
// store is opened and migrated immediately.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "data_dir", cfg.DataDir, "mode", cfg.Mode)

	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "dev"
	}

	return &Engine{
		db:                 adapter.NewDuckDB(),
		dbConfig:           adapter.Config{Path: cfg.DatabasePath},
		store:              store,
		logger:             logger,
		dataDir:            cfg.DataDir,
		transformationsDir: cfg.TransformationsDir,
		analysisDir:        cfg.AnalysisDir,
		mode:               mode,
	}, nil
}

// Close releases the warehouse connection and the run store.
func (e *Engine) Close() error {
	var firstErr error
	e.dbMu.Lock()
	if e.dbConnected {
		if err := e.db.Close(); err != nil {
			firstErr = err
		}
		e.dbConnected = false
	}
	e.dbMu.Unlock()

	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Mode returns the operating mode (dev or prod).
func (e *Engine) Mode() string {
	return e.mode
}

// RawDir returns the raw data landing zone.
func (e *Engine) RawDir() string {
	return filepath.Join(e.dataDir, "raw")
}

// ProcessedDir returns the directory for pipeline outputs.
func (e *Engine) ProcessedDir() string {
	return filepath.Join(e.dataDir, "processed")
}

// ensureDBConnected connects the warehouse adapter on first use. DuckDB
// creates the database file if it does not exist.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	if e.dbConfig.Path != "" {
		if dir := filepath.Dir(e.dbConfig.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	if err := e.db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	e.dbConnected = true
	return nil
}

// beginRun records a stage start in the run store. Recording failures are
// logged, not fatal: run history must never break the pipeline itself.
func (e *Engine) beginRun(stage string) *state.Run {
	run, err := e.store.CreateRun(stage, e.mode)
	if err != nil {
		e.logger.Warn("failed to record run start", "stage", stage, "error", err)
		return nil
	}
	return run
}

// endRun records a stage outcome.
func (e *Engine) endRun(run *state.Run, status state.RunStatus, criticalRules int, errMsg string) {
	if run == nil {
		return
	}
	if err := e.store.CompleteRun(run.ID, status, criticalRules, errMsg); err != nil {
		e.logger.Warn("failed to record run outcome", "run_id", run.ID, "error", err)
	}
}

// RunHistory returns the most recent recorded runs, newest first.
func (e *Engine) RunHistory(limit int) ([]*state.Run, error) {
	return e.store.ListRuns(limit)
}
