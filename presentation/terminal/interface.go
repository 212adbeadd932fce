package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ai_testgen/application/generator"
	"ai_testgen/domain/entities"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	priorityFor = map[entities.Priority]lipgloss.Style{
		entities.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		entities.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		entities.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
	statusFor = map[entities.RunStatus]lipgloss.Style{
		entities.RunStatusPassed:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		entities.RunStatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		entities.RunStatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

const helpText = `Commands:
  <url>                 analyze a page and show the first batch
  next, n, <enter>      show the next batch of the current session
  export <format> [file] export the session (json, maestro, katalon, testrail, csv, html, txt, markdown, katalon-script, playwright)
  run                   execute the session's cases in a browser
  help                  show this help
  quit, exit, q         leave`

// TerminalInterface is a line oriented REPL over incremental generation
type TerminalInterface struct {
	svc       *generator.Service
	logger    *logrus.Logger
	reader    *bufio.Reader
	out       io.Writer
	batchSize int
	sessionID string
	hasMore   bool
}

func NewTerminalInterface(svc *generator.Service, logger *logrus.Logger, in io.Reader, out io.Writer, batchSize int) *TerminalInterface {
	return &TerminalInterface{
		svc:       svc,
		logger:    logger,
		reader:    bufio.NewReader(in),
		out:       out,
		batchSize: batchSize,
	}
}

// Run - reads commands until quit or end of input. initial, when set, is
// analyzed before the first prompt.
func (t *TerminalInterface) Run(ctx context.Context, initial *generator.Request) error {
	fmt.Fprintln(t.out, titleStyle.Render("AI Test Case Generator"))
	fmt.Fprintln(t.out, dimStyle.Render("Enter a URL to analyze, 'help' for commands, 'quit' to exit"))
	fmt.Fprintln(t.out)

	if initial != nil {
		t.start(ctx, *initial)
	}

	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		if eof && input == "" {
			fmt.Fprintln(t.out)
			return nil
		}

		if quit := t.handle(ctx, input); quit {
			fmt.Fprintln(t.out, "Bye!")
			return nil
		}
		if eof {
			return nil
		}
	}
}

// handle - executes one command; reports whether the loop should stop
func (t *TerminalInterface) handle(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	cmd := ""
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(t.out, helpText)
	case "", "next", "n":
		t.next(ctx)
	case "export":
		t.export(ctx, fields[1:])
	case "run":
		t.run(ctx)
	default:
		t.start(ctx, generator.Request{URL: fields[0], Mode: generator.ModeFirst, BatchSize: t.batchSize})
	}
	return false
}

func (t *TerminalInterface) start(ctx context.Context, req generator.Request) {
	req.Mode = generator.ModeFirst
	if req.BatchSize == 0 {
		req.BatchSize = t.batchSize
	}

	resp, err := t.svc.Analyze(ctx, req)
	if err != nil {
		t.printError(err)
		return
	}
	t.logger.WithFields(logrus.Fields{"url": resp.URL, "session": resp.SessionID}).Debug("Interactive session started")

	t.sessionID = resp.SessionID
	t.hasMore = resp.HasMoreElements
	fmt.Fprintf(t.out, "\n%s %s\n", idStyle.Render(resp.Title), dimStyle.Render(resp.URL))
	t.printBatch(resp)
}

func (t *TerminalInterface) next(ctx context.Context) {
	if t.sessionID == "" {
		fmt.Fprintln(t.out, dimStyle.Render("No active session. Enter a URL first."))
		return
	}
	if !t.hasMore {
		fmt.Fprintln(t.out, dimStyle.Render("All elements processed. Use 'export <format>' to save the cases."))
		return
	}

	resp, err := t.svc.Analyze(ctx, generator.Request{
		Mode:      generator.ModeNext,
		SessionID: t.sessionID,
		BatchSize: t.batchSize,
	})
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			t.sessionID = ""
		}
		t.printError(err)
		return
	}
	t.hasMore = resp.HasMoreElements
	t.printBatch(resp)
}

func (t *TerminalInterface) printBatch(resp *generator.Response) {
	if resp.Note != "" {
		fmt.Fprintln(t.out, noteStyle.Render("Note: "+resp.Note))
	}

	for _, tc := range resp.TestCases {
		priority := priorityFor[tc.Priority].Render(string(tc.Priority))
		fmt.Fprintf(t.out, "\n%s %s [%s]\n", idStyle.Render(tc.ID), tc.Title, priority)
		for _, s := range tc.Steps {
			fmt.Fprintf(t.out, "  %d. %s\n", s.Step, s.Action)
			if s.Expected != "" {
				fmt.Fprintf(t.out, "     %s\n", dimStyle.Render("→ "+s.Expected))
			}
		}
	}

	c := resp.ProcessedCounts
	summary := fmt.Sprintf("\n%d cases so far | buttons %d, inputs %d, links %d, forms %d",
		resp.TotalCount, c.Buttons, c.Inputs, c.Links, c.Forms)
	if c.Screens > 0 {
		summary += fmt.Sprintf(", screens %d", c.Screens)
	}
	fmt.Fprintln(t.out, dimStyle.Render(summary))

	switch {
	case resp.SessionID == "":
	case resp.HasMoreElements:
		fmt.Fprintln(t.out, dimStyle.Render("Press enter for more."))
	default:
		fmt.Fprintln(t.out, dimStyle.Render("All elements processed."))
	}
}

func (t *TerminalInterface) export(ctx context.Context, args []string) {
	if t.sessionID == "" {
		fmt.Fprintln(t.out, dimStyle.Render("No active session. Enter a URL first."))
		return
	}
	format := entities.FormatJSON
	if len(args) > 0 {
		format = entities.ParseFormat(args[0])
	}

	doc, err := t.svc.Export(ctx, t.sessionID, format)
	if err != nil {
		t.printError(err)
		return
	}

	if len(args) < 2 {
		fmt.Fprintln(t.out, doc.Body)
		return
	}
	if err := os.WriteFile(args[1], []byte(doc.Body), 0o644); err != nil {
		t.printError(fmt.Errorf("failed to write %s: %w", args[1], err))
		return
	}
	fmt.Fprintf(t.out, "Saved %s export to %s\n", doc.Format, args[1])
}

func (t *TerminalInterface) run(ctx context.Context) {
	if t.sessionID == "" {
		fmt.Fprintln(t.out, dimStyle.Render("No active session. Enter a URL first."))
		return
	}

	report, err := t.svc.Run(ctx, t.sessionID)
	if err != nil {
		t.printError(err)
		return
	}
	PrintReport(t.out, report)
}

// PrintReport writes a colored run report
func PrintReport(out io.Writer, report *entities.RunReport) {
	for _, r := range report.Results {
		fmt.Fprintf(out, "%s %s %s\n", statusFor[r.Status].Render(strings.ToUpper(string(r.Status))), idStyle.Render(r.TestCaseID), r.Title)
		for _, s := range r.Steps {
			if s.Status == entities.RunStatusFailed {
				fmt.Fprintf(out, "  step %d: %s\n", s.Step, errorStyle.Render(s.Error))
			}
		}
	}
	fmt.Fprintf(out, "\npassed %d, failed %d, skipped %d\n", report.Passed, report.Failed, report.Skipped)
}

func (t *TerminalInterface) printError(err error) {
	fmt.Fprintln(t.out, errorStyle.Render("Error: "+err.Error()))
}
