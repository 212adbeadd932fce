package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const chromeDriverPort = 9515

type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	for _, path := range []string{configured, os.Getenv("BROWSER_DRIVER_PATH")} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("chromedriver not found, install it or set browser.driver_path")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	for _, path := range []string{configured, os.Getenv("CHROME_BINARY_PATH")} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// NewSeleniumController - starts chromedriver and opens a Chrome session
func NewSeleniumController(opts Options, logger *logrus.Logger) (*SeleniumController, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, err
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--window-size=1280,720",
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	if binary := findChromeBinary(opts.ChromePath); binary != "" {
		logger.Infof("Using Chrome binary at: %s", binary)
		chromeCaps.Path = binary
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found, set browser.chrome_path: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}, nil
}

// Extract - navigates to url and runs the snapshot script
func (s *SeleniumController) Extract(ctx context.Context, url string) (*entities.PageSnapshot, error) {
	if err := s.Navigate(ctx, url); err != nil {
		return nil, err
	}

	var result interface{}
	err := withContext(ctx, func() error {
		var err error
		result, err = s.wd.ExecuteScript("return ("+snapshotScript+")();", nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run snapshot script: %w", err)
	}

	raw, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("snapshot script returned %T", result)
	}
	return decodeSnapshot(raw, url)
}

// Navigate - navigates browser to specified URL
func (s *SeleniumController) Navigate(ctx context.Context, url string) error {
	s.logger.Debugf("Navigating to: %s", url)
	if err := withContext(ctx, func() error { return s.wd.Get(url) }); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Click - clicks on element identified by selector or visible text
func (s *SeleniumController) Click(ctx context.Context, target string) error {
	return withContext(ctx, func() error {
		element, err := s.findElement(target)
		if err != nil {
			return err
		}

		if _, err := s.wd.ExecuteScript("arguments[0].scrollIntoView({block: 'center'});", []interface{}{element}); err != nil {
			s.logger.Warnf("Failed to scroll to element: %v", err)
		}
		return element.Click()
	})
}

// Type - types text into an input field
func (s *SeleniumController) Type(ctx context.Context, target string, text string) error {
	return withContext(ctx, func() error {
		element, err := s.wd.FindElement(selenium.ByCSSSelector, fieldSelector(target))
		if err != nil {
			return fmt.Errorf("input field %q not found: %w", target, err)
		}
		if err := element.Clear(); err != nil {
			s.logger.Warnf("Failed to clear element: %v", err)
		}
		return element.SendKeys(text)
	})
}

// Title - returns the current page title
func (s *SeleniumController) Title(ctx context.Context) (string, error) {
	var title string
	err := withContext(ctx, func() error {
		var err error
		title, err = s.wd.Title()
		return err
	})
	return title, err
}

// IsTextVisible - checks whether any element containing text is displayed
func (s *SeleniumController) IsTextVisible(ctx context.Context, text string) (bool, error) {
	visible := false
	err := withContext(ctx, func() error {
		elements, err := s.wd.FindElements(selenium.ByXPATH, textXPath(text))
		if err != nil {
			return err
		}
		for _, el := range elements {
			if ok, _ := el.IsDisplayed(); ok {
				visible = true
				return nil
			}
		}
		return nil
	})
	return visible, err
}

// Count - returns the number of elements matching a CSS selector
func (s *SeleniumController) Count(ctx context.Context, selector string) (int, error) {
	n := 0
	err := withContext(ctx, func() error {
		elements, err := s.wd.FindElements(selenium.ByCSSSelector, selector)
		n = len(elements)
		return err
	})
	return n, err
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumController) Close() error {
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			s.logger.Warnf("Failed to quit webdriver: %v", err)
		}
		s.wd = nil
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			return fmt.Errorf("failed to stop chromedriver: %w", err)
		}
		s.service = nil
	}
	return nil
}

// findElement - finds element using various selector strategies
func (s *SeleniumController) findElement(target string) (selenium.WebElement, error) {
	if !isSelector(target) {
		lit := xpathLiteral(target)
		for _, xpath := range []string{
			fmt.Sprintf("//button[contains(normalize-space(.), %s)]", lit),
			fmt.Sprintf("//a[contains(normalize-space(.), %s)]", lit),
			fmt.Sprintf("//input[@value=%s]", lit),
			textXPath(target),
		} {
			if element, err := s.wd.FindElement(selenium.ByXPATH, xpath); err == nil {
				return element, nil
			}
		}
		return nil, fmt.Errorf("element not found with text: %s", target)
	}

	by := selenium.ByCSSSelector
	if strings.HasPrefix(target, "/") || strings.HasPrefix(target, "(") {
		by = selenium.ByXPATH
	}
	element, err := s.wd.FindElement(by, target)
	if err != nil {
		return nil, fmt.Errorf("element not found with selector: %s", target)
	}
	return element, nil
}

// Ensure SeleniumController implements Extractor and BrowserController interfaces
var (
	_ interfaces.Extractor         = (*SeleniumController)(nil)
	_ interfaces.BrowserController = (*SeleniumController)(nil)
)
