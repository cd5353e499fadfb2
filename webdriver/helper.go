package webdriver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/livefir/gridkit"
	"github.com/tebeka/selenium"
)

// ErrElementNotFound is returned when an element does not appear in time
var ErrElementNotFound = errors.New("element not found")

// By maps a locator onto the selenium strategy and value
func By(loc gridkit.Locator) (string, string, error) {
	switch loc.Strategy {
	case gridkit.ByID:
		return selenium.ByID, loc.Value, nil
	case gridkit.ByClass:
		return selenium.ByClassName, loc.Value, nil
	case gridkit.ByName:
		return selenium.ByName, loc.Value, nil
	case gridkit.ByXPath:
		return selenium.ByXPATH, loc.Value, nil
	case gridkit.ByCSS:
		return selenium.ByCSSSelector, loc.Value, nil
	case gridkit.ByTagName:
		return selenium.ByTagName, loc.Value, nil
	default:
		return "", "", fmt.Errorf("%w: %s", gridkit.ErrUnsupportedLocator, loc.Strategy)
	}
}

// Helper wraps a WebDriver with logging, explicit waits and screenshots.
type Helper struct {
	driver   selenium.WebDriver
	timeouts gridkit.Timeouts
	logger   *slog.Logger
}

// NewHelper creates a Helper around an existing driver
func NewHelper(driver selenium.WebDriver, opts ...Option) *Helper {
	o := newOptions(opts)
	return &Helper{
		driver:   driver,
		timeouts: o.timeouts,
		logger:   o.logger,
	}
}

// Driver returns the wrapped driver
func (h *Helper) Driver() selenium.WebDriver {
	return h.driver
}

// WaitForElement polls until the element is present or timeout passes.
// The implicit wait is disabled during the poll and restored afterwards so
// the two waits do not stack.
func (h *Helper) WaitForElement(loc gridkit.Locator, timeout time.Duration) (selenium.WebElement, error) {
	by, value, err := By(loc)
	if err != nil {
		return nil, err
	}
	h.logger.Info("waiting for element", "locator", loc.String(), "timeout", timeout)

	if err := h.driver.SetImplicitWaitTimeout(0); err != nil {
		return nil, fmt.Errorf("failed to clear implicit wait: %w", err)
	}
	defer func() {
		if err := h.driver.SetImplicitWaitTimeout(h.timeouts.Implicit); err != nil {
			h.logger.Warn("failed to restore implicit wait", "error", err)
		}
	}()

	var found selenium.WebElement
	err = h.driver.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		elem, err := wd.FindElement(by, value)
		if err != nil {
			return false, nil
		}
		found = elem
		return true, nil
	}, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s after %v: %v", ErrElementNotFound, loc, timeout, err)
	}
	return found, nil
}

// Element returns the element using the default element wait
func (h *Helper) Element(loc gridkit.Locator) (selenium.WebElement, error) {
	return h.ElementWithin(loc, h.timeouts.Element)
}

// ElementWithin returns the element, waiting at most wait for it
func (h *Helper) ElementWithin(loc gridkit.Locator, wait time.Duration) (selenium.WebElement, error) {
	h.logger.Info("finding element", "locator", loc.String())
	return h.WaitForElement(loc, wait)
}

// ElementText returns the trimmed visible text of elem
func (h *Helper) ElementText(elem selenium.WebElement) (string, error) {
	text, err := elem.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read element text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Text finds the element and returns its trimmed text
func (h *Helper) Text(loc gridkit.Locator) (string, error) {
	elem, err := h.Element(loc)
	if err != nil {
		return "", err
	}
	return h.ElementText(elem)
}

// Get opens url in the current window
func (h *Helper) Get(url string) error {
	h.logger.Info("opening url", "url", url)
	if err := h.driver.Get(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Title returns the current page title
func (h *Helper) Title() (string, error) {
	return h.driver.Title()
}

// CurrentURL returns the URL of the current page
func (h *Helper) CurrentURL() (string, error) {
	return h.driver.CurrentURL()
}

// Refresh reloads the current page
func (h *Helper) Refresh() error {
	return h.driver.Refresh()
}

// Forward moves forward in history
func (h *Helper) Forward() error {
	return h.driver.Forward()
}

// Back moves back in history
func (h *Helper) Back() error {
	return h.driver.Back()
}

// ExecuteScript runs script in the current frame. Failures of scripts that
// write to console.error are expected and swallowed.
func (h *Helper) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	h.logger.Info("executing script", "script", script)
	if args == nil {
		args = []interface{}{}
	}

	res, err := h.driver.ExecuteScript(script, args)
	if err != nil {
		if strings.Contains(script, "console.error") {
			return nil, nil
		}
		h.logger.Error("script execution failed", "script", script, "error", err)
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	h.logger.Info("script executed successfully", "script", script)
	return res, nil
}

// HardRefresh reloads the page through JavaScript, bypassing the cache
func (h *Helper) HardRefresh() error {
	_, err := h.ExecuteScript("location.reload(true);")
	return err
}

// PageScreenshot returns a PNG of the current viewport
func (h *Helper) PageScreenshot() ([]byte, error) {
	png, err := h.driver.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return png, nil
}

// ElementScreenshot returns a PNG of the element found by loc
func (h *Helper) ElementScreenshot(loc gridkit.Locator) ([]byte, error) {
	h.logger.Info("capturing element screenshot", "locator", loc.String())
	elem, err := h.Element(loc)
	if err != nil {
		return nil, err
	}
	png, err := elem.Screenshot(false)
	if err != nil {
		return nil, fmt.Errorf("failed to capture element screenshot: %w", err)
	}
	return png, nil
}

// SavePageScreenshot captures the viewport and writes it under dir
func (h *Helper) SavePageScreenshot(dir, name string) (string, error) {
	png, err := h.PageScreenshot()
	if err != nil {
		return "", err
	}
	return gridkit.SaveScreenshot(dir, name, png)
}
