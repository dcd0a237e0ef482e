package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTransformCommand creates the transform command.
func NewTransformCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Build the transformation SQL models",
		Long: `Run the staging, intermediate, and mart SQL models against the
warehouse in fixed order. The raw tables must already be loaded
(ordersight check --load).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := getLogger(cmd)

			eng, err := createEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if err := eng.Transform(cmd.Context()); err != nil {
				return fmt.Errorf("transform failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Models built successfully.")
			return nil
		},
	}
}
