package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ordersight-labs/ordersight/internal/state"
)

// sqlStep is one transformation file run in fixed order.
type sqlStep struct {
	name string
	path string
}

// transformSteps returns the model build order: staging, then
// intermediate, then marts. The order matters because later models read
// the earlier ones.
func transformSteps(dir string) []sqlStep {
	return []sqlStep{
		{"staging stg_orders", filepath.Join(dir, "staging", "stg_orders.sql")},
		{"staging stg_order_events", filepath.Join(dir, "staging", "stg_order_events.sql")},
		{"intermediate int_order_event_summary", filepath.Join(dir, "intermediate", "int_order_event_summary.sql")},
		{"marts fct_orders", filepath.Join(dir, "marts", "fct_orders.sql")},
		{"marts fct_daily_revenue", filepath.Join(dir, "marts", "fct_daily_revenue.sql")},
	}
}

// Transform runs the transformation SQL models against the warehouse in
// fixed order. The raw tables must already be loaded.
func (e *Engine) Transform(ctx context.Context) error {
	run := e.beginRun("transform")

	if err := e.transform(ctx); err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return err
	}

	e.endRun(run, state.RunStatusCompleted, 0, "")
	return nil
}

func (e *Engine) transform(ctx context.Context) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}

	for _, step := range transformSteps(e.transformationsDir) {
		sqlText, err := os.ReadFile(step.path)
		if err != nil {
			return fmt.Errorf("failed to read model %s: %w", step.name, err)
		}

		e.logger.Info("building model", "model", step.name)

		if err := e.db.Exec(ctx, string(sqlText)); err != nil {
			return fmt.Errorf("model %s failed: %w", step.name, err)
		}
	}
	return nil
}
