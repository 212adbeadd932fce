package browser

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const defaultActionTimeout = 15 * time.Second

// Options shared by every driver
type Options struct {
	Headless   bool
	DriverPath string // chromedriver, selenium only
	ChromePath string
	RemoteURL  string // devtools websocket, rod only
}

// PlaywrightBrowser extracts snapshots and executes test steps in Chromium
type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
}

// NewPlaywrightBrowser - starts playwright and opens a single page
func NewPlaywrightBrowser(opts Options, logger *logrus.Logger) (*PlaywrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if opts.ChromePath != "" {
		launch.ExecutablePath = playwright.String(opts.ChromePath)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1280, Height: 720},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		_ = dialog.Accept()
	})

	logger.WithField("headless", opts.Headless).Info("Playwright browser started")

	return &PlaywrightBrowser{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		logger:  logger,
	}, nil
}

// Extract - navigates to url and evaluates the snapshot script
func (b *PlaywrightBrowser) Extract(ctx context.Context, url string) (*entities.PageSnapshot, error) {
	if err := b.Navigate(ctx, url); err != nil {
		return nil, err
	}

	b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(3000),
	})

	result, err := b.page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate snapshot script: %w", err)
	}
	raw, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("snapshot script returned %T", result)
	}
	return decodeSnapshot(raw, url)
}

// Navigate - navigates to the specified URL
func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeoutMillis(ctx, 30*time.Second)),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// locate - a CSS/XPath locator for selectors, a text locator otherwise
func (b *PlaywrightBrowser) locate(target string) playwright.Locator {
	if isSelector(target) {
		return b.page.Locator(target).First()
	}
	return b.page.GetByText(target).First()
}

// Click - clicks on an element by selector or visible text
func (b *PlaywrightBrowser) Click(ctx context.Context, target string) error {
	err := b.locate(target).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	})
	if err != nil {
		return fmt.Errorf("element %q not clickable: %w", target, err)
	}
	return nil
}

// Type - fills an input field found by selector, name, id or placeholder
func (b *PlaywrightBrowser) Type(ctx context.Context, target string, text string) error {
	err := b.page.Locator(fieldSelector(target)).First().Fill(text, playwright.LocatorFillOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, defaultActionTimeout)),
	})
	if err != nil {
		return fmt.Errorf("input field %q not found: %w", target, err)
	}
	return nil
}

// Title - returns the current page title
func (b *PlaywrightBrowser) Title(ctx context.Context) (string, error) {
	return b.page.Title()
}

// IsTextVisible - checks whether text is visible on the page
func (b *PlaywrightBrowser) IsTextVisible(ctx context.Context, text string) (bool, error) {
	return b.page.GetByText(text).First().IsVisible()
}

// Count - returns the number of elements matching a CSS selector
func (b *PlaywrightBrowser) Count(ctx context.Context, selector string) (int, error) {
	return b.page.Locator(selector).Count()
}

// Close - closes the browser and stops playwright
func (b *PlaywrightBrowser) Close() error {
	var errs []string

	if b.context != nil {
		if err := b.context.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, fmt.Sprintf("failed to close context: %v", err))
		}
		b.context = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, fmt.Sprintf("failed to close browser: %v", err))
		}
		b.browser = nil
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Sprintf("failed to stop playwright: %v", err))
		}
		b.pw = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "closed")
}

// Ensure PlaywrightBrowser implements Extractor and BrowserController interfaces
var (
	_ interfaces.Extractor         = (*PlaywrightBrowser)(nil)
	_ interfaces.BrowserController = (*PlaywrightBrowser)(nil)
)
