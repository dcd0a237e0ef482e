package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersight-labs/ordersight/internal/dataset"
	"github.com/ordersight-labs/ordersight/internal/state"
	"github.com/ordersight-labs/ordersight/internal/testutil"
)

// newTestEngine builds an engine on a temp data dir with an in-memory
// warehouse and run store. The transformation and analysis dirs point at
// the real project SQL so the shipped models get exercised.
func newTestEngine(t *testing.T, mode string) *Engine {
	t.Helper()

	eng, err := New(Config{
		DataDir:            t.TempDir(),
		TransformationsDir: filepath.Join("..", "..", "transformations"),
		AnalysisDir:        filepath.Join("..", "..", "analysis"),
		DatabasePath:       "",
		StatePath:          ":memory:",
		Mode:               mode,
		Logger:             testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestGenerateWritesRawCSVs(t *testing.T) {
	eng := newTestEngine(t, "dev")

	require.NoError(t, eng.Generate("clean", 100, 42))

	orders, err := dataset.ReadCSV(filepath.Join(eng.RawDir(), ordersFile))
	require.NoError(t, err)
	assert.Equal(t, 100, orders.Len())

	events, err := dataset.ReadCSV(filepath.Join(eng.RawDir(), eventsFile))
	require.NoError(t, err)
	assert.Greater(t, events.Len(), 100)

	runs, err := eng.RunHistory(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "generate", runs[0].Stage)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)
}

func TestGenerateUnknownProfile(t *testing.T) {
	eng := newTestEngine(t, "dev")

	err := eng.Generate("sparkling", 10, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")

	runs, err := eng.RunHistory(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusFailed, runs[0].Status)
}

func TestCheckCleanData(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("clean", 200, 42))

	res, err := eng.Check(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, res.Report, 13)
	assert.False(t, res.GateFailed)
	for _, r := range res.Report {
		assert.Zerof(t, r.FailedRows, "rule %s", r.RuleID)
	}

	report, err := dataset.ReadCSV(res.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, 13, report.Len())

	// No failures: the samples file is empty.
	data, err := os.ReadFile(res.SamplesPath)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCheckMessyDevDoesNotGate(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("messy", 500, 42))

	res, err := eng.Check(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, res.GateFailed, "dev mode reports but never gates")
	assert.Greater(t, res.Samples.Len(), 0)
}

func TestCheckMessyProdGates(t *testing.T) {
	eng := newTestEngine(t, "prod")
	require.NoError(t, eng.Generate("messy", 500, 42))

	res, err := eng.Check(context.Background(), false)
	require.NoError(t, err)

	assert.True(t, res.GateFailed)

	runs, err := eng.RunHistory(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	var checkRun *state.Run
	for _, run := range runs {
		if run.Stage == "check" {
			checkRun = run
		}
	}
	require.NotNil(t, checkRun)
	assert.Equal(t, state.RunStatusGated, checkRun.Status)
	assert.Greater(t, checkRun.CriticalRules, 0)
}

func TestCheckMissingRawFiles(t *testing.T) {
	eng := newTestEngine(t, "dev")

	_, err := eng.Check(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read raw orders")
}

func TestCheckLoadsWarehouse(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("clean", 150, 42))

	ctx := context.Background()
	_, err := eng.Check(ctx, true)
	require.NoError(t, err)

	n, err := eng.db.RowCount(ctx, rawOrdersTable)
	require.NoError(t, err)
	assert.Equal(t, int64(150), n)

	n, err = eng.db.RowCount(ctx, reportTable)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	// Clean run: the samples table exists but is empty.
	n, err = eng.db.RowCount(ctx, samplesTable)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckLoadsFailureSamples(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("messy", 500, 42))

	ctx := context.Background()
	res, err := eng.Check(ctx, true)
	require.NoError(t, err)

	n, err := eng.db.RowCount(ctx, samplesTable)
	require.NoError(t, err)
	assert.Equal(t, int64(res.Samples.Len()), n)
}

func TestTransformBuildsModels(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("clean", 200, 42))

	ctx := context.Background()
	_, err := eng.Check(ctx, true)
	require.NoError(t, err)
	require.NoError(t, eng.Transform(ctx))

	for _, tbl := range []string{"stg_orders", "stg_order_events", "int_order_event_summary", "fct_orders", "fct_daily_revenue"} {
		n, err := eng.db.RowCount(ctx, tbl)
		require.NoErrorf(t, err, "model %s", tbl)
		assert.Greaterf(t, n, int64(0), "model %s", tbl)
	}

	n, err := eng.db.RowCount(ctx, "fct_orders")
	require.NoError(t, err)
	assert.Equal(t, int64(200), n)
}

func TestTransformMissingModels(t *testing.T) {
	eng := newTestEngine(t, "dev")
	eng.transformationsDir = t.TempDir()

	err := eng.Transform(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read model")
}

func TestInsightsEndToEnd(t *testing.T) {
	eng := newTestEngine(t, "dev")
	require.NoError(t, eng.Generate("clean", 200, 42))

	ctx := context.Background()
	_, err := eng.Check(ctx, true)
	require.NoError(t, err)
	require.NoError(t, eng.Transform(ctx))

	var buf strings.Builder
	outPath, err := eng.Insights(ctx, &buf)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	out := string(data)

	assert.Equal(t, out, buf.String(), "writer mirrors the results file")
	assert.Contains(t, out, "Query 1")
	assert.Contains(t, out, "fct_daily_revenue")
	assert.NotContains(t, out, "ERROR:")
}

func TestInsightsRecordsStatementErrors(t *testing.T) {
	eng := newTestEngine(t, "dev")
	analysisDir := t.TempDir()
	eng.analysisDir = analysisDir

	sql := "SELECT 1 AS ok;\nSELECT * FROM table_that_does_not_exist;\n"
	require.NoError(t, os.WriteFile(filepath.Join(analysisDir, insightsFile), []byte(sql), 0o644))

	outPath, err := eng.Insights(context.Background(), nil)
	require.NoError(t, err, "statement failures do not fail the stage")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Query 1")
	assert.Contains(t, out, "Query 2")
	assert.Contains(t, out, "ERROR:")
}

func TestSplitStatements(t *testing.T) {
	sql := `-- heading comment
SELECT 1;

-- another comment
SELECT 2
FROM t;
`
	got := splitStatements(sql)
	require.Len(t, got, 2)
	assert.Equal(t, "SELECT 1", got[0])
	assert.Equal(t, "SELECT 2\nFROM t", got[1])
}

func TestModeDefaultsToDev(t *testing.T) {
	eng, err := New(Config{
		DataDir:   t.TempDir(),
		StatePath: ":memory:",
	})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	assert.Equal(t, "dev", eng.Mode())
}
