package config

// Default configuration values.
const (
	DefaultDataDir            = "data"
	DefaultTransformationsDir = "transformations"
	DefaultAnalysisDir        = "analysis"
	DefaultDatabasePath       = "data/processed/warehouse.duckdb"
	DefaultStatePath          = ".ordersight/state.db"
	DefaultMode               = "dev"
)
