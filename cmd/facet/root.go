// facet is the operator CLI for the jewelry concierge integration layer.
// It exercises the CRM and search clients the chat service consumes, which
// makes it both a smoke-test tool and a manual escape hatch when the
// concierge is degraded.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/app"
	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/version"
)

var facetApp *app.App

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "CRM and search integration client for the jewelry concierge",
	Long: `facet exposes the outbound integrations of the jewelry concierge:
the GoHighLevel CRM (contacts, appointments, messages, transactions) and
Tavily web search, with capability gates, deterministic fallbacks and
cached health probing.

Configuration comes from FACET_* environment variables; see
internal/config for the full surface. Disabled or unreachable
integrations answer with their fallback message and exit code 0 -
degradation is an expected state, not a CLI failure.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New()
		if err != nil {
			return err
		}
		facetApp = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if facetApp != nil {
			facetApp.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("facet %s (commit=%s, built=%s, go=%s)\n",
			version.Version, version.Commit, version.BuildDate, version.GoVersion)
	},
	// No integrations needed to print a version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// printJSON writes v to stdout, indented for humans.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints the result of an operation, absorbing gate-off and
// unreachable failures into the fallback response for op. Upstream
// rejections and contract violations propagate as CLI errors.
func emit(op fallback.Op, v any, err error) error {
	if err != nil {
		if res, ok := facetApp.Fallback.Absorb(op, err); ok {
			return printJSON(res)
		}
		return err
	}
	return printJSON(v)
}
