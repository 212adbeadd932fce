package cli

import (
	"context"
	"os"
	"os/signal"

	"ai_testgen/application/generator"
	"ai_testgen/presentation/terminal"

	"github.com/spf13/cobra"
)

var interactiveSource pageSource

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Page through test cases batch by batch in the terminal",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		var initial *generator.Request
		if interactiveSource.url != "" || interactiveSource.snapshot != "" {
			req, err := interactiveSource.request(app)
			if err != nil {
				return err
			}
			initial = &req
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		term := terminal.NewTerminalInterface(app.svc, app.logger, cmd.InOrStdin(), cmd.OutOrStdout(), app.cfg.Generate.BatchSize)
		return term.Run(ctx, initial)
	},
}

func init() {
	interactiveSource.register(interactiveCmd)
	rootCmd.AddCommand(interactiveCmd)
}
