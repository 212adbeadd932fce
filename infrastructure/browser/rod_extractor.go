package browser

import (
	"context"
	"fmt"
	"sync"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
)

// RodExtractor captures snapshots through the devtools protocol with stealth
// patches applied to every page. It launches a local Chrome unless
// Options.RemoteURL points at a running one.
type RodExtractor struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *logrus.Logger
	mu      sync.Mutex
}

// NewRodExtractor - launches or connects to Chrome
func NewRodExtractor(opts Options, logger *logrus.Logger) (*RodExtractor, error) {
	wsURL := opts.RemoteURL
	var l *launcher.Launcher

	if wsURL == "" {
		l = launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		if opts.ChromePath != "" {
			l = l.Bin(opts.ChromePath)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	logger.WithField("remote", opts.RemoteURL != "").Info("Rod browser connected")
	return &RodExtractor{browser: b, lnch: l, logger: logger}, nil
}

// Extract - opens a stealth tab, navigates and evaluates the snapshot script
func (r *RodExtractor) Extract(ctx context.Context, url string) (*entities.PageSnapshot, error) {
	r.mu.Lock()
	page, err := stealth.Page(r.browser)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			r.logger.WithError(err).Debug("Failed to close tab")
		}
	}()

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		r.logger.WithError(err).WithField("url", url).Warn("Wait load timeout")
	}

	res, err := p.Eval(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate snapshot script: %w", err)
	}
	return decodeSnapshot(res.Value.Str(), url)
}

// Close - disconnects and kills a locally launched Chrome
func (r *RodExtractor) Close() error {
	err := r.browser.Close()
	if r.lnch != nil {
		r.lnch.Kill()
	}
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// Ensure RodExtractor implements Extractor interface
var _ interfaces.Extractor = (*RodExtractor)(nil)
