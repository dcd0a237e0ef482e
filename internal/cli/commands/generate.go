package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Profile string
	N       int
	Seed    int64
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic raw data",
		Long: `Generate synthetic orders and order_events CSVs into the raw layer.

The clean profile produces data without intentional defects; the messy
profile injects typical quality problems (negative amounts, missing
fields, orphan events, duplicate keys) for the check stage to find.`,
		Example: `  # Clean data, default size
  ordersight generate

  # Messy data for exercising the quality checks
  ordersight generate --profile messy --n 5000 --seed 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "clean", "Data profile (clean|messy)")
	cmd.Flags().IntVar(&opts.N, "n", 5000, "Number of orders to generate")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "Random seed")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := eng.Generate(opts.Profile, opts.N, opts.Seed); err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d orders (profile %s) into %s\n",
		opts.N, opts.Profile, eng.RawDir())
	return nil
}
