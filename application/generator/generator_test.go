package generator

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ai_testgen/application/session"
	"ai_testgen/application/synthesizer"
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"ai_testgen/infrastructure/policy"
	"ai_testgen/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

type fakeExtractor struct {
	snapshot *entities.PageSnapshot
	err      error
	block    bool
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*entities.PageSnapshot, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.snapshot, f.err
}

type fakeAI struct {
	suggestions []entities.Suggestion
	err         error
}

func (f *fakeAI) SuggestTestCases(ctx context.Context, snapshot entities.PageSnapshot, existing []entities.TestCase) ([]entities.Suggestion, error) {
	return f.suggestions, f.err
}

type nopBrowser struct{ closed bool }

func (b *nopBrowser) Navigate(ctx context.Context, url string) error { return nil }
func (b *nopBrowser) Click(ctx context.Context, target string) error { return nil }
func (b *nopBrowser) Type(ctx context.Context, target, text string) error { return nil }
func (b *nopBrowser) Title(ctx context.Context) (string, error) { return "Home", nil }
func (b *nopBrowser) IsTextVisible(ctx context.Context, text string) (bool, error) { return true, nil }
func (b *nopBrowser) Count(ctx context.Context, selector string) (int, error) { return 0, nil }
func (b *nopBrowser) Close() error { b.closed = true; return nil }

func newTestService(t *testing.T, cfg Config, opts ...Option) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	synth := synthesizer.New(policy.NewPriorityPolicy(logger), logger)
	sessions := session.NewManager(storage.NewMemoryStore(), logger, session.Config{})
	return NewService(synth, sessions, logger, cfg, opts...)
}

func pageSnapshot() *entities.PageSnapshot {
	return &entities.PageSnapshot{
		URL:     "https://x.test",
		Title:   "Home",
		Buttons: []entities.Element{{Text: "Login"}, {Text: "Help"}},
		Links:   []entities.Element{{Text: "About", Href: "https://x.test/about"}},
		Inputs:  []entities.Element{{Name: "q"}},
	}
}

func TestAnalyze_FullFromSnapshot(t *testing.T) {
	s := newTestService(t, Config{})

	resp, err := s.Analyze(context.Background(), Request{Snapshot: pageSnapshot()})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !resp.Success || resp.TotalCount != 9 || len(resp.TestCases) != 9 {
		t.Errorf("got success=%v total=%d", resp.Success, resp.TotalCount)
	}
	if resp.ProcessedCounts.Buttons != 2 || resp.ProcessedCounts.Links != 1 {
		t.Errorf("counts = %+v", resp.ProcessedCounts)
	}
	if resp.SessionID != "" {
		t.Error("full mode created a session")
	}
}

func TestAnalyze_InvalidSnapshot(t *testing.T) {
	s := newTestService(t, Config{})

	_, err := s.Analyze(context.Background(), Request{Snapshot: &entities.PageSnapshot{URL: "https://x.test"}})
	if !errors.Is(err, entities.ErrInvalidSnapshot) {
		t.Errorf("got %v, want invalid snapshot", err)
	}
	_, err = s.Analyze(context.Background(), Request{URL: "not a url"})
	if !errors.Is(err, entities.ErrInvalidSnapshot) {
		t.Errorf("got %v, want invalid snapshot for bad url", err)
	}
}

func TestAnalyze_FirstThenNext(t *testing.T) {
	s := newTestService(t, Config{})
	ctx := context.Background()

	first, err := s.Analyze(ctx, Request{Snapshot: pageSnapshot(), Mode: ModeFirst, BatchSize: 4})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.SessionID == "" || len(first.TestCases) != 4 || !first.HasMoreElements {
		t.Fatalf("first = %+v", first)
	}

	seen := map[string]bool{}
	for _, tc := range first.TestCases {
		seen[tc.ID] = true
	}

	total := len(first.TestCases)
	for resp := first; resp.HasMoreElements; {
		resp, err = s.Analyze(ctx, Request{Mode: ModeNext, SessionID: first.SessionID, BatchSize: 4})
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		for _, tc := range resp.TestCases {
			if seen[tc.ID] {
				t.Errorf("case %s emitted twice", tc.ID)
			}
			seen[tc.ID] = true
		}
		total += len(resp.TestCases)
		if resp.TotalCount != total {
			t.Errorf("totalCount = %d, want %d", resp.TotalCount, total)
		}
	}
	if total != 9 {
		t.Errorf("incremental produced %d cases, want 9", total)
	}

	state, err := s.Session(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(state.TestCases) != 9 {
		t.Errorf("session holds %d cases", len(state.TestCases))
	}
}

func TestAnalyze_NextUnknownSession(t *testing.T) {
	s := newTestService(t, Config{})
	_, err := s.Analyze(context.Background(), Request{Mode: ModeNext, SessionID: "sess_missing"})
	var notFound *entities.SessionNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("got %v, want SessionNotFoundError", err)
	}
}

func TestAnalyze_ExtractionFailureFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		extractor interfaces.Extractor
		wantNote  string
	}{
		{"no extractor", nil, "No page extractor"},
		{"error", &fakeExtractor{err: errors.New("chrome crashed")}, "chrome crashed"},
		{"timeout", &fakeExtractor{block: true}, "did not respond in time"},
		{"untitled page", &fakeExtractor{snapshot: &entities.PageSnapshot{URL: "https://x.test"}}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.extractor != nil {
				opts = append(opts, WithExtractor(tt.extractor))
			}
			s := newTestService(t, Config{ExtractTimeout: 20 * time.Millisecond}, opts...)

			resp, err := s.Analyze(context.Background(), Request{URL: "https://x.test"})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if !resp.Success || len(resp.TestCases) != 5 || resp.TestCases[0].ID != "TC_GENERIC_1" {
				t.Errorf("got %+v", resp)
			}
			if !strings.Contains(resp.Note, tt.wantNote) {
				t.Errorf("note = %q, want it to mention %q", resp.Note, tt.wantNote)
			}
		})
	}
}

func TestAnalyze_ExtractedURL(t *testing.T) {
	s := newTestService(t, Config{}, WithExtractor(&fakeExtractor{snapshot: pageSnapshot()}))
	resp, err := s.Analyze(context.Background(), Request{URL: "https://x.test"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.TotalCount != 9 || resp.Note != "" {
		t.Errorf("got total=%d note=%q", resp.TotalCount, resp.Note)
	}
}

func TestAnalyze_AIEnrichment(t *testing.T) {
	ai := &fakeAI{suggestions: []entities.Suggestion{
		{Title: "Search returns results", Priority: "high", Steps: []entities.SuggestedStep{
			{Action: `Enter "shoes" into input field with name "q"`, Expected: "Results shown"},
		}},
		{Title: "", Steps: []entities.SuggestedStep{{Action: "x"}}},
		{Title: "No steps"},
	}}
	s := newTestService(t, Config{}, WithAI(ai))

	resp, err := s.Analyze(context.Background(), Request{Snapshot: pageSnapshot(), UseAI: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	last := resp.TestCases[len(resp.TestCases)-1]
	if resp.TotalCount != 10 || last.ID != "TC_AI_1" || last.Priority != entities.PriorityHigh {
		t.Errorf("got total=%d last=%+v", resp.TotalCount, last)
	}
	if last.Steps[0].Step != 1 {
		t.Errorf("AI steps not numbered")
	}
}

func TestAnalyze_AIFailureIsANote(t *testing.T) {
	s := newTestService(t, Config{}, WithAI(&fakeAI{err: errors.New("quota exceeded")}))

	resp, err := s.Analyze(context.Background(), Request{Snapshot: pageSnapshot(), UseAI: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.TotalCount != 9 || !strings.Contains(resp.Note, "quota exceeded") {
		t.Errorf("got total=%d note=%q", resp.TotalCount, resp.Note)
	}
}

func TestExport(t *testing.T) {
	s := newTestService(t, Config{})
	ctx := context.Background()

	first, err := s.Analyze(ctx, Request{Snapshot: pageSnapshot(), Mode: ModeFirst, BatchSize: 3})
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	doc, err := s.Export(ctx, first.SessionID, entities.FormatCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Filename != "test-cases.csv" || strings.Count(doc.Body, `"Functional"`) != 3 {
		t.Errorf("got %s:\n%s", doc.Filename, doc.Body)
	}

	if _, err := s.Export(ctx, "sess_missing", entities.FormatJSON); !errors.Is(err, entities.ErrSessionNotFound) {
		t.Errorf("got %v", err)
	}

	stateless := s.ExportCases(entities.ExportMeta{URL: "https://x.test", Title: "Home"}, first.TestCases, "bogus")
	if stateless.Format != entities.FormatJSON {
		t.Errorf("unknown format rendered as %s", stateless.Format)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestService(t, Config{})
	ctx := context.Background()

	first, _ := s.Analyze(ctx, Request{Snapshot: pageSnapshot(), Mode: ModeFirst})
	if err := s.DeleteSession(ctx, first.SessionID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.Session(ctx, first.SessionID); !errors.Is(err, entities.ErrSessionNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestRun(t *testing.T) {
	browser := &nopBrowser{}
	s := newTestService(t, Config{}, WithBrowser(func(ctx context.Context) (interfaces.BrowserController, error) {
		return browser, nil
	}))
	ctx := context.Background()

	first, _ := s.Analyze(ctx, Request{Snapshot: pageSnapshot(), Mode: ModeFirst, BatchSize: 2})
	report, err := s.Run(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 2 {
		t.Errorf("got %d results", len(report.Results))
	}
	if !browser.closed {
		t.Error("browser not closed")
	}

	noBrowser := newTestService(t, Config{})
	if _, err := noBrowser.RunCases(ctx, "https://x.test", first.TestCases); err == nil {
		t.Error("expected error without a browser")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeFull, "FIRST": ModeFirst, " next ": ModeNext, "full": ModeFull} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("all"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
