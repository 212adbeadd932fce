package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var extractName string

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Capture a page snapshot and save it as JSON",
	Long: `Capture the interactive elements of a page with the configured
browser.driver and save the snapshot under generate.snapshot_dir.

The saved file can be edited and fed back with 'testgen generate --snapshot'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.Browser.ExtractTimeout)
		defer cancel()

		snapshot, err := app.extractor.Extract(ctx, args[0])
		if err != nil {
			return fmt.Errorf("extracting %s: %w", args[0], err)
		}

		name := extractName
		if name == "" {
			name = snapshotName(snapshot.URL)
		}
		path, err := app.snapshots.SaveSnapshot(name, snapshot)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d buttons, %d links, %d inputs, %d forms\n",
			snapshot.Title, len(snapshot.Buttons), len(snapshot.Links), len(snapshot.Inputs), len(snapshot.Forms))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// snapshotName derives a file name from host and path
func snapshotName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "snapshot"
	}
	return u.Host + u.Path
}

func init() {
	extractCmd.Flags().StringVar(&extractName, "name", "", "snapshot file name (default derived from the URL)")
	rootCmd.AddCommand(extractCmd)
}
