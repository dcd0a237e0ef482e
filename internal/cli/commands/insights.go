package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInsightsCommand creates the insights command.
func NewInsightsCommand() *cobra.Command {
	quiet := false

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Run the analysis queries",
		Long: `Run each statement from the analysis SQL against the warehouse and
write the rendered results to the processed layer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := getLogger(cmd)

			eng, err := createEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			out := cmd.OutOrStdout()
			if quiet {
				out = nil
			}
			path, err := eng.Insights(cmd.Context(), out)
			if err != nil {
				return fmt.Errorf("insights failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Analysis results written to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Write results to file only, not stdout")

	return cmd
}
