package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ordersight-labs/ordersight/internal/adapter"
	"github.com/ordersight-labs/ordersight/internal/state"
)

const (
	insightsFile = "insights.sql"
	resultsFile  = "analysis_results.txt"
)

// Insights runs each statement from the analysis SQL against the
// warehouse, rendering results to w and to a results file in the
// processed layer. A failing statement is recorded as an ERROR line in
// the output rather than failing the stage; the marts it reads may
// legitimately be absent on a partial run.
func (e *Engine) Insights(ctx context.Context, w io.Writer) (string, error) {
	run := e.beginRun("insights")

	outPath, err := e.insights(ctx, w)
	if err != nil {
		e.endRun(run, state.RunStatusFailed, 0, err.Error())
		return "", err
	}

	e.endRun(run, state.RunStatusCompleted, 0, "")
	return outPath, nil
}

func (e *Engine) insights(ctx context.Context, w io.Writer) (string, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return "", err
	}

	sqlPath := filepath.Join(e.analysisDir, insightsFile)
	sqlText, err := os.ReadFile(sqlPath)
	if err != nil {
		return "", fmt.Errorf("failed to read analysis SQL: %w", err)
	}

	statements := splitStatements(string(sqlText))
	if len(statements) == 0 {
		return "", fmt.Errorf("no statements found in %s", sqlPath)
	}

	var out strings.Builder
	for i, stmt := range statements {
		fmt.Fprintf(&out, "Query %d\n\n%s\n\n", i+1, stmt)

		if err := e.renderQuery(ctx, &out, stmt); err != nil {
			fmt.Fprintf(&out, "ERROR: %v\n", err)
			e.logger.Warn("insight query failed", "query", i+1, "error", err)
		}

		out.WriteString("\n------------------------------------------------------------\n\n")
	}

	if err := os.MkdirAll(e.ProcessedDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create processed directory: %w", err)
	}
	outPath := filepath.Join(e.ProcessedDir(), resultsFile)
	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis results: %w", err)
	}

	if w != nil {
		if _, err := io.WriteString(w, out.String()); err != nil {
			return "", err
		}
	}

	e.logger.Info("analysis results written", "path", outPath, "queries", len(statements))
	return outPath, nil
}

// renderQuery runs one statement and renders its rows as a text table.
func (e *Engine) renderQuery(ctx context.Context, w io.Writer, stmt string) error {
	rows, err := e.db.Query(ctx, stmt)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderRows(w, rows)
}

// renderRows writes a query result as a text table.
func renderRows(w io.Writer, rows *adapter.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)

	count := 0
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		rec := make(table.Row, len(cols))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[i] = v
		}
		t.AppendRow(rec)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if count == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	t.Render()
	return nil
}

// splitStatements strips comment-only lines and splits the SQL text into
// individual statements on ';'.
func splitStatements(sqlText string) []string {
	var kept []string
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}
