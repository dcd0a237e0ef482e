package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ordersight-labs/ordersight/internal/dataset"
	"github.com/ordersight-labs/ordersight/internal/gen"
	"github.com/ordersight-labs/ordersight/internal/state"
)

// Generate writes synthetic orders and order_events CSVs to the raw layer.
func (e *Engine) Generate(profileName string, n int, seed int64) error {
	run := e.beginRun("generate")

	profile, err := gen.ProfileByName(profileName)
	if err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return err
	}

	e.logger.Info("generating synthetic data", "profile", profile.Name, "orders", n, "seed", seed)

	orders, events := gen.Generate(gen.Options{N: n, Seed: seed, Profile: profile})

	if err := os.MkdirAll(e.RawDir(), 0o755); err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return fmt.Errorf("failed to create raw directory: %w", err)
	}

	ordersPath := filepath.Join(e.RawDir(), ordersFile)
	eventsPath := filepath.Join(e.RawDir(), eventsFile)

	if err := dataset.WriteCSV(orders, ordersPath); err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return fmt.Errorf("failed to write orders: %w", err)
	}
	if err := dataset.WriteCSV(events, eventsPath); err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return fmt.Errorf("failed to write events: %w", err)
	}

	e.logger.Info("raw data written",
		"orders", ordersPath, "order_rows", orders.Len(),
		"events", eventsPath, "event_rows", events.Len())

	e.endRun(run, state.RunStatusCompleted, 0, "")
	return nil
}
