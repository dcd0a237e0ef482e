// Package state records pipeline run history in a local SQLite database.
// The quality engine itself is stateless across runs; this store exists so
// operators can see when stages ran, whether the gate fired, and why.
package state

import "time"

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	// RunStatusRunning marks a run that has started and not yet finished.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a run that finished successfully.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed marks a run that stopped on a software or data error.
	RunStatusFailed RunStatus = "failed"
	// RunStatusGated marks a check run stopped by the quality gate.
	RunStatusGated RunStatus = "gated"
)

// Run is one recorded pipeline stage execution.
type Run struct {
	ID    string
	Stage string
	Mode  string
	// CriticalRules is the number of critical rules with failures found by
	// a check run; zero for other stages.
	CriticalRules int
	Status        RunStatus
	Error         string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// Store persists run history.
type Store interface {
	// Open opens the store at path, creating it if needed. Use ":memory:"
	// for tests.
	Open(path string) error

	// Close closes the store.
	Close() error

	// Migrate applies pending schema migrations.
	Migrate() error

	// CreateRun records the start of a stage execution.
	CreateRun(stage, mode string) (*Run, error)

	// CompleteRun records the outcome of a run.
	CompleteRun(id string, status RunStatus, criticalRules int, errMsg string) error

	// GetRun retrieves a run by ID.
	GetRun(id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)
}
