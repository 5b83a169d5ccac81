package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docarc/docarc/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that docarc can run with the current configuration",
		Long: `Run diagnostic checks: archive roots, index directory permissions,
disk space, and embedding model availability.

A missing embedding model is a warning, not an error; search degrades to
keyword ranking without one.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, cleanup := setupLogging(cfg, false)
			defer cleanup()

			checker := preflight.New(
				preflight.WithOutput(cmd.OutOrStdout()),
				preflight.WithVerbose(verbose),
			)
			results := checker.RunAll(cmd.Context(), cfg)
			checker.PrintResults(results)

			if checker.HasCriticalFailures(results) {
				return fmt.Errorf("system check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show per-check details")

	return cmd
}
