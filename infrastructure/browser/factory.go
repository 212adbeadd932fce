package browser

import (
	"ai_testgen/domain/interfaces"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Driver names accepted by the factories
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverRod        = "rod"
)

// ExtractorCloser is an Extractor holding a browser process
type ExtractorCloser interface {
	interfaces.Extractor
	Close() error
}

// NewExtractor - starts the named driver for snapshot capture
func NewExtractor(driver string, opts Options, logger *logrus.Logger) (ExtractorCloser, error) {
	var (
		e   ExtractorCloser
		err error
	)
	switch strings.ToLower(driver) {
	case DriverPlaywright:
		e, err = NewPlaywrightBrowser(opts, logger)
	case DriverSelenium:
		e, err = NewSeleniumController(opts, logger)
	case DriverRod:
		e, err = NewRodExtractor(opts, logger)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NewController - starts the named driver for executing test cases.
// rod only captures snapshots, so runs fall back to playwright.
func NewController(driver string, opts Options, logger *logrus.Logger) (interfaces.BrowserController, error) {
	var (
		c   interfaces.BrowserController
		err error
	)
	switch strings.ToLower(driver) {
	case DriverSelenium:
		c, err = NewSeleniumController(opts, logger)
	case DriverPlaywright, DriverRod, "":
		c, err = NewPlaywrightBrowser(opts, logger)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
