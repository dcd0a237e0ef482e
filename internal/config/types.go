// Package config provides configuration management for the ordersight CLI.
// Configuration is layered: defaults, then the ordersight.yaml project
// file, then ORDERSIGHT_ environment variables, then CLI flags.
package config

import (
	"fmt"
	"path/filepath"
)

// Config holds all pipeline configuration options.
type Config struct {
	// DataDir is the root of the data layout; raw CSVs live in
	// DataDir/raw and pipeline outputs in DataDir/processed.
	DataDir string `koanf:"data_dir"`

	// TransformationsDir holds the fixed-order SQL model files.
	TransformationsDir string `koanf:"transformations_dir"`

	// AnalysisDir holds the insight SQL.
	AnalysisDir string `koanf:"analysis_dir"`

	// DatabasePath is the DuckDB warehouse file (empty for in-memory).
	DatabasePath string `koanf:"database"`

	// StatePath is the SQLite run-history database.
	StatePath string `koanf:"state_path"`

	// Mode selects dev or prod behavior: in prod, critical quality
	// failures abort the run.
	Mode string `koanf:"mode"`

	Verbose bool `koanf:"verbose"`
}

// RawDir returns the raw data landing zone.
func (c *Config) RawDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// ProcessedDir returns the directory for pipeline outputs.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.DataDir, "processed")
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "prod" {
		return fmt.Errorf("invalid mode %q (want dev or prod)", c.Mode)
	}
	return nil
}
