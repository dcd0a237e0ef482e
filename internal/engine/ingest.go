package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ordersight-labs/ordersight/internal/dataset"
	"github.com/ordersight-labs/ordersight/internal/dq"
	"github.com/ordersight-labs/ordersight/internal/state"
)

// Output file names in the processed layer.
const (
	reportFile  = "data_quality_report.csv"
	samplesFile = "failed_samples.csv"
)

// CheckResult is the outcome of the ingestion stage.
type CheckResult struct {
	Report      dq.Report
	Samples     *dataset.Table
	ReportPath  string
	SamplesPath string

	// GateFailed is true when prod mode found critical violations; the
	// caller must stop the pipeline and exit non-zero.
	GateFailed bool
}

// Check reads the raw CSVs, runs the quality rule catalog, writes the
// report and sample outputs, and optionally loads the raw tables plus
// quality outputs into the warehouse.
//
// The quality engine never repairs data: raw tables are loaded as-is, and
// timestamp typing is left to the staging SQL.
func (e *Engine) Check(ctx context.Context, loadWarehouse bool) (*CheckResult, error) {
	run := e.beginRun("check")

	res, err := e.check(ctx, loadWarehouse)
	if err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return nil, err
	}

	critical := len(res.Report.CriticalFailures())
	switch {
	case res.GateFailed:
		e.endRun(run, state.RunStatusGated, critical, "critical data quality failures")
	default:
		e.endRun(run, state.RunStatusCompleted, critical, "")
	}
	return res, nil
}

func (e *Engine) check(ctx context.Context, loadWarehouse bool) (*CheckResult, error) {
	ordersPath := filepath.Join(e.RawDir(), ordersFile)
	eventsPath := filepath.Join(e.RawDir(), eventsFile)

	orders, err := dataset.ReadCSV(ordersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw orders: %w", err)
	}
	events, err := dataset.ReadCSV(eventsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw events: %w", err)
	}

	e.logger.Info("running quality checks", "orders", orders.Len(), "events", events.Len())

	report, samples, err := dq.RunChecks(orders, events, dq.DefaultEnums())
	if err != nil {
		return nil, fmt.Errorf("quality checks aborted: %w", err)
	}

	if err := os.MkdirAll(e.ProcessedDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create processed directory: %w", err)
	}

	reportPath := filepath.Join(e.ProcessedDir(), reportFile)
	samplesPath := filepath.Join(e.ProcessedDir(), samplesFile)

	if err := dataset.WriteCSV(report.Table(), reportPath); err != nil {
		return nil, fmt.Errorf("failed to write quality report: %w", err)
	}
	if err := dataset.WriteCSV(samples, samplesPath); err != nil {
		return nil, fmt.Errorf("failed to write failure samples: %w", err)
	}

	e.logger.Info("quality outputs written", "report", reportPath, "samples", samplesPath)

	if loadWarehouse {
		if err := e.loadWarehouse(ctx, ordersPath, eventsPath, reportPath, samplesPath, samples); err != nil {
			return nil, err
		}
	}

	return &CheckResult{
		Report:      report,
		Samples:     samples,
		ReportPath:  reportPath,
		SamplesPath: samplesPath,
		GateFailed:  e.mode == "prod" && dq.ShouldFailRun(report),
	}, nil
}

// loadWarehouse loads the raw tables and quality outputs into DuckDB.
func (e *Engine) loadWarehouse(ctx context.Context, ordersPath, eventsPath, reportPath, samplesPath string, samples *dataset.Table) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}

	loads := []struct {
		table string
		path  string
	}{
		{rawOrdersTable, ordersPath},
		{rawEventsTable, eventsPath},
		{reportTable, reportPath},
	}
	for _, l := range loads {
		if err := e.db.LoadCSV(ctx, l.table, l.path); err != nil {
			return err
		}
	}

	// On a clean run the samples table has no columns at all, which cannot
	// be loaded from CSV; create it with just the rule_id column so the
	// downstream models always have something to query.
	if len(samples.Columns()) == 0 {
		stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s (rule_id VARCHAR)", samplesTable)
		if err := e.db.Exec(ctx, stmt); err != nil {
			return err
		}
	} else if err := e.db.LoadCSV(ctx, samplesTable, samplesPath); err != nil {
		return err
	}

	for _, table := range []string{rawOrdersTable, rawEventsTable, reportTable, samplesTable} {
		n, err := e.db.RowCount(ctx, table)
		if err != nil {
			return err
		}
		e.logger.Debug("loaded warehouse table", "table", table, "rows", n)
	}
	return nil
}
