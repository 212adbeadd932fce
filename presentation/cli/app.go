package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"ai_testgen/application/generator"
	"ai_testgen/application/session"
	"ai_testgen/application/synthesizer"
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"ai_testgen/infrastructure/ai"
	"ai_testgen/infrastructure/browser"
	"ai_testgen/infrastructure/config"
	"ai_testgen/infrastructure/htmlsnap"
	"ai_testgen/infrastructure/policy"
	"ai_testgen/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// application holds the wired services for one command invocation
type application struct {
	cfg       *config.Config
	logger    *logrus.Logger
	svc       *generator.Service
	sessions  *session.Manager
	snapshots interfaces.SnapshotStorage
	extractor interfaces.Extractor
	closers   []func() error
}

// loadApp reads configuration and wires every collaborator
func loadApp() (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, cfg.NewLogger())
}

func newApp(cfg *config.Config, logger *logrus.Logger) (*application, error) {
	a := &application{cfg: cfg, logger: logger}

	store, err := a.sessionStore()
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManager(store, logger, session.Config{
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.Max,
	})

	a.snapshots, err = storage.NewSnapshotFiles(cfg.Generate.SnapshotDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.extractor = a.newExtractor()

	synth := synthesizer.New(policy.NewPriorityPolicy(logger), logger,
		synthesizer.WithBatchSize(cfg.Generate.BatchSize))

	opts := []generator.Option{
		generator.WithExtractor(a.extractor),
		generator.WithBrowser(a.openBrowser),
	}
	if cfg.AIReady() {
		client, err := ai.NewOpenAIClient(ai.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
		}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, generator.WithAI(client))
	}

	a.svc = generator.NewService(synth, a.sessions, logger, generator.Config{
		ExtractTimeout: cfg.Browser.ExtractTimeout,
		AITimeout:      cfg.AI.Timeout,
		StepTimeout:    cfg.Browser.StepTimeout,
	}, opts...)

	return a, nil
}

func (a *application) sessionStore() (interfaces.SessionStore, error) {
	if a.cfg.Session.Store != "sqlite" {
		return storage.NewMemoryStore(), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.cfg.Session.SQLitePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	store, err := storage.NewSQLiteStore(a.cfg.Session.SQLitePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *application) browserOptions() browser.Options {
	return browser.Options{
		Headless:   a.cfg.Browser.Headless,
		DriverPath: a.cfg.Browser.DriverPath,
		ChromePath: a.cfg.Browser.ChromePath,
		RemoteURL:  a.cfg.Browser.RemoteURL,
	}
}

func (a *application) newExtractor() interfaces.Extractor {
	if a.cfg.Browser.Driver == "http" {
		return htmlsnap.NewExtractor(&http.Client{Timeout: a.cfg.Browser.ExtractTimeout}, a.logger)
	}
	e := &lazyExtractor{
		start: func() (browser.ExtractorCloser, error) {
			return browser.NewExtractor(a.cfg.Browser.Driver, a.browserOptions(), a.logger)
		},
	}
	a.closers = append(a.closers, e.Close)
	return e
}

// openBrowser starts a fresh controller for one run
func (a *application) openBrowser(ctx context.Context) (interfaces.BrowserController, error) {
	driver := a.cfg.Browser.Driver
	if driver == "http" {
		driver = browser.DriverPlaywright
	}
	return browser.NewController(driver, a.browserOptions(), a.logger)
}

// loadSnapshot reads a snapshot file saved by the extract command
func (a *application) loadSnapshot(path string) (*entities.PageSnapshot, error) {
	return a.snapshots.LoadSnapshot(path)
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("Failed to release resource")
		}
	}
	a.closers = nil
}

// lazyExtractor starts its browser on first use and serializes captures
// on the single page it drives.
type lazyExtractor struct {
	start func() (browser.ExtractorCloser, error)

	mu sync.Mutex
	e  browser.ExtractorCloser
}

func (l *lazyExtractor) Extract(ctx context.Context, url string) (*entities.PageSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.e == nil {
		e, err := l.start()
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		l.e = e
	}
	return l.e.Extract(ctx, url)
}

func (l *lazyExtractor) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.e == nil {
		return nil
	}
	err := l.e.Close()
	l.e = nil
	return err
}
