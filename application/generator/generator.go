// Package generator orchestrates the pipeline: snapshot acquisition, test case
// synthesis in full or incremental mode, optional AI enrichment, session
// bookkeeping, export and execution.
package generator

import (
	"ai_testgen/application/render"
	"ai_testgen/application/runner"
	"ai_testgen/application/session"
	"ai_testgen/application/synthesizer"
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects how much of the snapshot a request turns into test cases
type Mode string

const (
	ModeFull  Mode = "full"
	ModeFirst Mode = "first"
	ModeNext  Mode = "next"
)

// ParseMode - maps a request value to a Mode; empty means full
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFull, nil
	case ModeFull, ModeFirst, ModeNext:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Request is one generation call
type Request struct {
	URL       string                 `json:"url,omitempty"`
	Snapshot  *entities.PageSnapshot `json:"snapshot,omitempty"`
	Mode      Mode                   `json:"mode,omitempty"`
	SessionID string                 `json:"sessionId,omitempty"`
	BatchSize int                    `json:"batchSize,omitempty"`
	UseAI     bool                   `json:"useAI,omitempty"`
}

// Response is the result of a generation call
type Response struct {
	Success         bool                     `json:"success"`
	SessionID       string                   `json:"sessionId,omitempty"`
	URL             string                   `json:"url"`
	Title           string                   `json:"title"`
	TestCases       []entities.TestCase      `json:"testCases"`
	TotalCount      int                      `json:"totalCount"`
	HasMoreElements bool                     `json:"hasMoreElements"`
	ProcessedCounts entities.ProcessedCounts `json:"processedCounts"`
	Cursor          entities.Cursor          `json:"cursor"`
	Note            string                   `json:"note,omitempty"`
}

// Config bounds calls to external collaborators
type Config struct {
	ExtractTimeout time.Duration
	AITimeout      time.Duration
	StepTimeout    time.Duration
}

// BrowserFactory opens a browser for executing test cases
type BrowserFactory func(ctx context.Context) (interfaces.BrowserController, error)

type Service struct {
	synth     *synthesizer.Synthesizer
	sessions  *session.Manager
	renderer  *render.Renderer
	extractor interfaces.Extractor
	ai        interfaces.AI
	browser   BrowserFactory
	logger    *logrus.Logger
	cfg       Config
	now       func() time.Time
}

// Option configures optional collaborators of a Service
type Option func(*Service)

// WithExtractor enables URL requests
func WithExtractor(e interfaces.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithAI enables AI enrichment of full generations
func WithAI(ai interfaces.AI) Option {
	return func(s *Service) { s.ai = ai }
}

// WithBrowser enables executing session test cases
func WithBrowser(f BrowserFactory) Option {
	return func(s *Service) { s.browser = f }
}

// WithRenderer replaces the default renderer
func WithRenderer(r *render.Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// NewService - creates the generation service
func NewService(synth *synthesizer.Synthesizer, sessions *session.Manager, logger *logrus.Logger, cfg Config, opts ...Option) *Service {
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 30 * time.Second
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 60 * time.Second
	}
	s := &Service{
		synth:    synth,
		sessions: sessions,
		renderer: render.New(),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze - runs one generation request. Collaborator failures degrade to
// fallback cases and a note; only invalid input and unknown sessions fail.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	if req.Mode == "" {
		req.Mode = ModeFull
	}

	switch req.Mode {
	case ModeNext:
		return s.next(ctx, req)
	case ModeFull, ModeFirst:
	default:
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}

	snapshot, note, err := s.acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return s.fallback(req.URL, note), nil
	}

	if req.Mode == ModeFirst {
		return s.first(ctx, *snapshot, req.BatchSize, note)
	}
	return s.full(ctx, *snapshot, req.UseAI, note)
}

// acquire - resolves the request's snapshot. A nil snapshot with a note means
// extraction failed and fallback cases should be served.
func (s *Service) acquire(ctx context.Context, req Request) (*entities.PageSnapshot, string, error) {
	if req.Snapshot != nil {
		if err := synthesizer.Validate(req.Snapshot); err != nil {
			return nil, "", err
		}
		return req.Snapshot, "", nil
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, "", &entities.InvalidSnapshotError{Field: "url", Reason: "is required when no snapshot is given"}
	}
	probe := entities.PageSnapshot{URL: url, Title: "-"}
	if err := synthesizer.Validate(&probe); err != nil {
		return nil, "", err
	}
	if s.extractor == nil {
		return nil, "No page extractor is configured; generic test cases were generated", nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()

	snapshot, err := s.extractor.Extract(extractCtx, url)
	if err == nil && snapshot != nil {
		err = synthesizer.Validate(snapshot)
	}
	if err != nil {
		if errors.Is(extractCtx.Err(), context.DeadlineExceeded) {
			err = &entities.ExternalCollaboratorTimeout{Collaborator: "page extractor", Err: err}
		}
		s.logger.WithError(err).WithField("url", url).Warn("Page extraction failed")
		return nil, fmt.Sprintf("Could not analyze the page (%v); generic test cases were generated", err), nil
	}
	if snapshot == nil {
		return nil, "Page extractor returned no data; generic test cases were generated", nil
	}
	return snapshot, "", nil
}

func (s *Service) fallback(url, note string) *Response {
	cases := s.synth.Fallback(url, note)
	return &Response{
		Success:    true,
		URL:        url,
		TestCases:  cases,
		TotalCount: len(cases),
		Note:       note,
	}
}

func (s *Service) full(ctx context.Context, snapshot entities.PageSnapshot, useAI bool, note string) (*Response, error) {
	cases, err := s.synth.Full(snapshot)
	if err != nil {
		return nil, err
	}

	if useAI {
		extra, aiNote := s.enrich(ctx, snapshot, cases)
		cases = append(cases, extra...)
		note = joinNotes(note, aiNote)
	}

	return &Response{
		Success:         true,
		URL:             snapshot.URL,
		Title:           snapshot.Title,
		TestCases:       cases,
		TotalCount:      len(cases),
		ProcessedCounts: synthesizer.Processed(&snapshot),
		Note:            note,
	}, nil
}

func (s *Service) first(ctx context.Context, snapshot entities.PageSnapshot, batchSize int, note string) (*Response, error) {
	batch, err := s.synth.Incremental(&entities.SessionState{Snapshot: snapshot}, batchSize)
	if err != nil {
		return nil, err
	}

	state, err := s.sessions.Create(ctx, snapshot, progress(batch), note)
	if err != nil {
		return nil, err
	}
	return sessionResponse(state, batch.NewCases), nil
}

func (s *Service) next(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, &entities.SessionNotFoundError{SessionID: req.SessionID}
	}

	var batch synthesizer.Batch
	state, err := s.sessions.Update(ctx, req.SessionID, func(state *entities.SessionState) (session.Progress, error) {
		var err error
		batch, err = s.synth.Incremental(state, req.BatchSize)
		if err != nil {
			return session.Progress{}, err
		}
		return progress(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(state, batch.NewCases), nil
}

func progress(b synthesizer.Batch) session.Progress {
	return session.Progress{
		NewCases:        b.NewCases,
		Cursor:          b.Cursor,
		ProcessedCounts: b.ProcessedCounts,
		HasMore:         b.HasMore,
	}
}

func sessionResponse(state *entities.SessionState, newCases []entities.TestCase) *Response {
	if newCases == nil {
		newCases = []entities.TestCase{}
	}
	return &Response{
		Success:         true,
		SessionID:       state.SessionID,
		URL:             state.Snapshot.URL,
		Title:           state.Snapshot.Title,
		TestCases:       newCases,
		TotalCount:      len(state.TestCases),
		HasMoreElements: state.HasMore,
		ProcessedCounts: state.ProcessedCounts,
		Cursor:          state.Cursor,
		Note:            state.Note,
	}
}

func joinNotes(notes ...string) string {
	var parts []string
	for _, n := range notes {
		if n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "; ")
}

// Session - returns the accumulated state of a session
func (s *Service) Session(ctx context.Context, id string) (*entities.SessionState, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession - discards a session
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// Export - renders every case accumulated in a session
func (s *Service) Export(ctx context.Context, sessionID string, format entities.Format) (*entities.ExportDocument, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	meta := entities.ExportMeta{
		URL:         state.Snapshot.URL,
		Title:       state.Snapshot.Title,
		Platform:    state.Snapshot.Platform,
		GeneratedAt: s.now(),
	}
	doc := s.renderer.Render(format, meta, state.TestCases)
	return &doc, nil
}

// ExportCases - renders caller-supplied cases without a session
func (s *Service) ExportCases(meta entities.ExportMeta, cases []entities.TestCase, format entities.Format) entities.ExportDocument {
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = s.now()
	}
	return s.renderer.Render(format, meta, cases)
}

// Run - executes the cases of a session against a live browser
func (s *Service) Run(ctx context.Context, sessionID string) (*entities.RunReport, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.RunCases(ctx, state.Snapshot.URL, state.TestCases)
}

// RunCases - executes cases against a freshly opened browser
func (s *Service) RunCases(ctx context.Context, url string, cases []entities.TestCase) (*entities.RunReport, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("no browser is configured for running test cases")
	}
	browser, err := s.browser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close browser")
		}
	}()

	r := runner.New(browser, s.logger, runner.Config{StepTimeout: s.cfg.StepTimeout})
	return r.Run(ctx, url, cases), nil
}
