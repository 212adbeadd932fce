package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// config file named by --config; empty means the default lookup
var configPath string

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "testgen",
	Short: "Generate functional test cases from web pages and app screens",
	Long: `testgen extracts the interactive elements of a page (buttons, links,
inputs and forms), turns them into structured test cases and exports them
for Maestro, Katalon, TestRail and other tools.

Pages can be analyzed in one shot or incrementally in batches through the
HTTP API, the MCP server or the interactive terminal.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "testgen %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./testgen.yaml or ~/.ai_testgen/testgen.yaml)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
