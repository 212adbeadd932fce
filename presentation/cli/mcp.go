package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ai_testgen/presentation/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start the MCP (Model Context Protocol) server on stdio transport.

The server exposes test case generation as tools that AI coding assistants
can call: generate_test_cases, next_test_cases and export_test_cases.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		go app.sessions.RunJanitor(ctx, app.cfg.Session.SweepInterval)

		srv := mcp.NewServer(app.svc, app.logger, app.cfg.Generate.BatchSize, appVersion)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
