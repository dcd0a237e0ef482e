package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// PipelineOptions holds options for the pipeline command.
type PipelineOptions struct {
	Profile string
	N       int
	Seed    int64

	SkipGenerate  bool
	SkipCheck     bool
	SkipTransform bool
	SkipInsights  bool
}

// NewPipelineCommand creates the pipeline command.
func NewPipelineCommand() *cobra.Command {
	opts := &PipelineOptions{}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full order-to-insight pipeline",
		Long: `Run all stages in order: generate, check (with warehouse load),
transform, insights. In prod mode a gated check stops the pipeline
before any downstream stage executes.`,
		Example: `  # Full run on clean data
  ordersight pipeline

  # Messy data, prod gating
  ordersight pipeline --profile messy --mode prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "clean", "Data profile (clean|messy)")
	cmd.Flags().IntVar(&opts.N, "n", 5000, "Number of orders to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "Random seed")
	cmd.Flags().BoolVar(&opts.SkipGenerate, "skip-generate", false, "Skip the generate stage")
	cmd.Flags().BoolVar(&opts.SkipCheck, "skip-check", false, "Skip the check stage")
	cmd.Flags().BoolVar(&opts.SkipTransform, "skip-transform", false, "Skip the transform stage")
	cmd.Flags().BoolVar(&opts.SkipInsights, "skip-insights", false, "Skip the insights stage")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *PipelineOptions) error {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	out := cmd.OutOrStdout()
	started := time.Now()

	if !opts.SkipGenerate {
		fmt.Fprintf(out, "==> generate (profile %s, n=%d)\n", opts.Profile, opts.N)
		if err := eng.Generate(opts.Profile, opts.N, opts.Seed); err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}
	}

	if !opts.SkipCheck {
		fmt.Fprintln(out, "==> check")
		res, err := eng.Check(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		renderReport(out, res.Report)

		if res.GateFailed {
			fmt.Fprintln(out, "CRITICAL data quality failures detected (mode=prod). Stopping the pipeline.")
			renderCriticalFailures(out, res.Report.CriticalFailures())
			return fmt.Errorf("critical data quality failures")
		}
	}

	if !opts.SkipTransform {
		fmt.Fprintln(out, "==> transform")
		if err := eng.Transform(cmd.Context()); err != nil {
			return fmt.Errorf("transform failed: %w", err)
		}
	}

	if !opts.SkipInsights {
		fmt.Fprintln(out, "==> insights")
		path, err := eng.Insights(cmd.Context(), nil)
		if err != nil {
			return fmt.Errorf("insights failed: %w", err)
		}
		fmt.Fprintf(out, "Analysis results written to: %s\n", path)
	}

	fmt.Fprintf(out, "Pipeline completed in %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}
