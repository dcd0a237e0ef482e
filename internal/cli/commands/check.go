package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ordersight-labs/ordersight/internal/dq"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Load bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run data-quality checks on the raw data",
		Long: `Read the raw orders and order_events CSVs, run the quality rule
catalog, and write the report and failure samples to the processed layer.

With --load, the raw tables and quality outputs are also loaded into the
DuckDB warehouse. In prod mode, any critical rule with failures gates
the run: the offending rules are printed and the command exits non-zero.`,
		Example: `  # Report only
  ordersight check

  # Load warehouse tables as well
  ordersight check --load

  # Gate the pipeline on critical failures
  ordersight check --load --mode prod`,
		Aliases: []string{"ingest"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Load, "load", false, "Load raw tables and quality outputs into the warehouse")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, err := eng.Check(cmd.Context(), opts.Load)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	renderReport(out, res.Report)
	fmt.Fprintf(out, "\nReport:  %s\nSamples: %s\n", res.ReportPath, res.SamplesPath)

	if res.GateFailed {
		fmt.Fprintln(out)
		fmt.Fprintln(out, severityStyle(dq.SeverityCritical).Render(
			"CRITICAL data quality failures detected (mode=prod). Failing the run."))
		renderCriticalFailures(out, res.Report.CriticalFailures())
		return fmt.Errorf("critical data quality failures")
	}
	return nil
}

// renderReport prints the full rule report as a text table.
func renderReport(w io.Writer, report dq.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"rule", "name", "table", "severity", "failed", "total", "rate"})
	for _, res := range report {
		t.AppendRow(table.Row{
			res.RuleID,
			res.RuleName,
			res.TableName,
			severityStyle(res.Severity).Render(string(res.Severity)),
			res.FailedRows,
			res.TotalRows,
			formatRate(res.FailureRate),
		})
	}
	t.Render()
}

// renderCriticalFailures prints the rows that gated the run.
func renderCriticalFailures(w io.Writer, failures []dq.RuleResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"rule", "name", "table", "failed", "rate"})
	for _, res := range failures {
		t.AppendRow(table.Row{
			res.RuleID, res.RuleName, res.TableName, res.FailedRows, formatRate(res.FailureRate),
		})
	}
	t.Render()
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 4, 64)
}

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func severityStyle(sev dq.Severity) lipgloss.Style {
	switch sev {
	case dq.SeverityCritical:
		return criticalStyle
	case dq.SeverityWarning:
		return warningStyle
	default:
		return lipgloss.NewStyle()
	}
}
