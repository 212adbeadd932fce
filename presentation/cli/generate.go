package cli

import (
	"fmt"
	"os"
	"strings"

	"ai_testgen/application/generator"
	"ai_testgen/domain/entities"

	"github.com/spf13/cobra"
)

// pageSource is the --url / --snapshot pair shared by commands that analyze a page
type pageSource struct {
	url      string
	snapshot string
}

func (p *pageSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.url, "url", "", "page URL to extract")
	cmd.Flags().StringVar(&p.snapshot, "snapshot", "", "snapshot JSON file (from 'testgen extract' or hand written)")
}

// request builds a generation request; a snapshot file wins over the URL
func (p *pageSource) request(app *application) (generator.Request, error) {
	if p.snapshot != "" {
		snapshot, err := app.loadSnapshot(p.snapshot)
		if err != nil {
			return generator.Request{}, err
		}
		return generator.Request{Snapshot: snapshot}, nil
	}
	if p.url == "" {
		return generator.Request{}, fmt.Errorf("one of --url or --snapshot is required")
	}
	return generator.Request{URL: p.url}, nil
}

var (
	generateSource    pageSource
	generateMode      string
	generateSession   string
	generateFormat    string
	generateOut       string
	generateBatchSize int
	generateAI        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate test cases and export them",
	Long: `Generate test cases for a page and write them in an export format.

Mode full (default) generates every case. Mode first generates one batch and
prints the session id on stderr; pass it back with --session to get the next
batch. Sessions survive between invocations only with session.store=sqlite.

Formats: json, maestro, katalon, testrail, csv, html, txt, markdown,
katalon-script, playwright.`,
	Example: `  testgen generate --url https://example.com --format maestro --out flow.yaml
  testgen generate --snapshot login.json --format testrail
  testgen generate --url https://example.com --mode first --batch-size 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		mode, err := generator.ParseMode(generateMode)
		if err != nil {
			return err
		}

		var req generator.Request
		if generateSession != "" {
			req = generator.Request{Mode: generator.ModeNext, SessionID: generateSession}
		} else {
			if mode == generator.ModeNext {
				return fmt.Errorf("mode next needs --session")
			}
			req, err = generateSource.request(app)
			if err != nil {
				return err
			}
			req.Mode = mode
			req.UseAI = generateAI
		}
		req.BatchSize = generateBatchSize
		if req.BatchSize <= 0 {
			req.BatchSize = app.cfg.Generate.BatchSize
		}

		resp, err := app.svc.Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		if resp.Note != "" {
			fmt.Fprintf(stderr, "Note: %s\n", resp.Note)
		}
		if resp.SessionID != "" {
			fmt.Fprintf(stderr, "Session %s: %d cases so far, more elements: %t\n",
				resp.SessionID, resp.TotalCount, resp.HasMoreElements)
		}

		meta := entities.ExportMeta{URL: resp.URL, Title: resp.Title}
		doc := app.svc.ExportCases(meta, resp.TestCases, entities.ParseFormat(generateFormat))
		return writeDocument(cmd, doc, generateOut)
	},
}

// writeDocument prints the document or saves it to out
func writeDocument(cmd *cobra.Command, doc entities.ExportDocument, out string) error {
	if out == "" {
		body := doc.Body
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(out, []byte(doc.Body), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s export to %s\n", doc.Format, out)
	return nil
}

func init() {
	generateSource.register(generateCmd)
	generateCmd.Flags().StringVar(&generateMode, "mode", "full", "full or first")
	generateCmd.Flags().StringVar(&generateSession, "session", "", "continue an incremental session")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "json", "export format")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().IntVar(&generateBatchSize, "batch-size", 0, "cases per batch (default generate.batch_size)")
	generateCmd.Flags().BoolVar(&generateAI, "ai", false, "append AI suggested cases (needs ai.enabled and an API key)")
	rootCmd.AddCommand(generateCmd)
}
