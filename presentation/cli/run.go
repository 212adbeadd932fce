package cli

import (
	"encoding/json"
	"fmt"

	"ai_testgen/presentation/terminal"

	"github.com/spf13/cobra"
)

var (
	runSource pageSource
	runJSON   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate test cases and execute them in a browser",
	Long: `Generate every test case for a page and execute them against a live
browser. Steps the browser cannot map to an action are reported as skipped.

Runs use playwright unless browser.driver is selenium.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		req, err := runSource.request(app)
		if err != nil {
			return err
		}
		resp, err := app.svc.Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}
		if resp.Note != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s\n", resp.Note)
		}

		report, err := app.svc.RunCases(cmd.Context(), resp.URL, resp.TestCases)
		if err != nil {
			return err
		}

		if runJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		terminal.PrintReport(cmd.OutOrStdout(), report)
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d test cases failed", report.Failed, len(report.Results))
		}
		return nil
	},
}

func init() {
	runSource.register(runCmd)
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(runCmd)
}
