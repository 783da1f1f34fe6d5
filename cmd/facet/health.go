package main

import (
	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report integration connectivity",
	Long: `Probes each enabled integration on the configured probe timeout and
folds the results into one verdict: ok, degraded or disabled. Results are
cached for the configured TTL, so repeated invocations inside the window
do not hit the remote services again.

A degraded service still exits 0: the concierge keeps answering with
fallback responses while an integration is down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := facetApp.Health.Status(cmd.Context())
		if err := printJSON(status); err != nil {
			return err
		}
		if status.Status == health.VerdictDegraded {
			facetApp.Logger.Warn("one or more integrations unreachable")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
