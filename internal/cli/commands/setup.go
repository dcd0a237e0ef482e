package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ordersight-labs/ordersight/internal/config"
	"github.com/ordersight-labs/ordersight/internal/engine"
)

// configKey stores the loaded config in the command context.
type configKey struct{}

// loggerKey stores the logger in the command context.
type loggerKey struct{}

// WithConfig stores the config in the context for command access.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in the context for command access.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// getConfig retrieves the config from the command context.
func getConfig(cmd *cobra.Command) *config.Config {
	if c, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		DataDir:            config.DefaultDataDir,
		TransformationsDir: config.DefaultTransformationsDir,
		AnalysisDir:        config.DefaultAnalysisDir,
		DatabasePath:       config.DefaultDatabasePath,
		StatePath:          config.DefaultStatePath,
		Mode:               config.DefaultMode,
	}
}

// getLogger retrieves the logger from the command context.
func getLogger(cmd *cobra.Command) *slog.Logger {
	if l, ok := cmd.Context().Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// createEngine builds a pipeline engine from the loaded config.
func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		DataDir:            cfg.DataDir,
		TransformationsDir: cfg.TransformationsDir,
		AnalysisDir:        cfg.AnalysisDir,
		DatabasePath:       cfg.DatabasePath,
		StatePath:          cfg.StatePath,
		Mode:               cfg.Mode,
		Logger:             logger,
	})
}
