// Package chrome drives a local or dockerised Chrome through the DevTools
// protocol. It mirrors the webdriver helper for suites that do not need a
// Selenium grid.
package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/livefir/gridkit"
)

// Options configures how the browser is started.
type Options struct {
	// RemoteURL connects to an already running Chrome, e.g. a container's
	// DevToolsURL. When empty a local Chrome is launched.
	RemoteURL string
	// ExecPath overrides the Chrome binary for local launches
	ExecPath     string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	Timeouts     gridkit.Timeouts
	Logger       *slog.Logger
}

// DefaultOptions returns headless 1920x1080 settings with the standard waits
func DefaultOptions() Options {
	return Options{
		Headless:     true,
		WindowWidth:  1920,
		WindowHeight: 1080,
		Timeouts:     gridkit.DefaultTimeouts(),
	}
}

// Browser is one Chrome tab plus the allocator that owns it.
type Browser struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     Options
	logger   *slog.Logger
	timeouts gridkit.Timeouts
}

// New starts or attaches to Chrome and opens a tab. Cancelling parent or
// calling Close tears both down.
func New(parent context.Context, opts Options) (*Browser, error) {
	if opts.Timeouts == (gridkit.Timeouts{}) {
		opts.Timeouts = gridkit.DefaultTimeouts()
	}
	logger := opts.Logger
	if logger == nil {
		logger = gridkit.Logger()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		logger.Info("connecting to chrome", "url", opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		logger.Info("launching chrome", "headless", opts.Headless, "exec_path", opts.ExecPath)
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, execOptions(opts)...)
	}

	ctx, cancel := chromedp.NewContext(allocCtx)
	b := &Browser{
		ctx: ctx,
		cancel: func() {
			cancel()
			allocCancel()
		},
		opts:     opts,
		logger:   logger,
		timeouts: opts.Timeouts,
	}

	// An empty Run starts the browser and the tab.
	if err := chromedp.Run(ctx); err != nil {
		b.cancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	return b, nil
}

func execOptions(opts Options) []chromedp.ExecAllocatorOption {
	o := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-background-networking", true),
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		o = append(o, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		o = append(o, chromedp.ExecPath(opts.ExecPath))
	}
	return o
}

// Context returns the tab context for running raw chromedp actions
func (b *Browser) Context() context.Context {
	return b.ctx
}

// Close shuts the tab and the browser or remote connection
func (b *Browser) Close() {
	b.cancel()
	b.logger.Info("browser closed")
}

func (b *Browser) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// query maps a locator onto a chromedp selector and query option.
func query(loc gridkit.Locator) (string, chromedp.QueryOption, error) {
	switch loc.Strategy {
	case gridkit.ByID:
		return loc.Value, chromedp.ByID, nil
	case gridkit.ByCSS:
		return loc.Value, chromedp.ByQuery, nil
	case gridkit.ByXPath:
		return loc.Value, chromedp.BySearch, nil
	case gridkit.ByTagName:
		return loc.Value, chromedp.ByQuery, nil
	case gridkit.ByName:
		return "[name=" + cssString(loc.Value) + "]", chromedp.ByQuery, nil
	case gridkit.ByClass:
		return "[class~=" + cssString(loc.Value) + "]", chromedp.ByQuery, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", gridkit.ErrUnsupportedLocator, loc.Strategy)
	}
}

// cssString quotes s as a CSS string literal
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}

// Navigate opens url and waits for the page load event
func (b *Browser) Navigate(url string) error {
	b.logger.Info("opening url", "url", url)
	if err := b.run(b.timeouts.PageLoad, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Title returns the page title
func (b *Browser) Title() (string, error) {
	var title string
	err := b.run(b.timeouts.Implicit, chromedp.Title(&title))
	return title, err
}

// CurrentURL returns the address of the current page
func (b *Browser) CurrentURL() (string, error) {
	var u string
	err := b.run(b.timeouts.Implicit, chromedp.Location(&u))
	return u, err
}

// Refresh reloads the page
func (b *Browser) Refresh() error {
	return b.run(b.timeouts.PageLoad, chromedp.Reload())
}

// Forward moves forward in history
func (b *Browser) Forward() error {
	return b.run(b.timeouts.PageLoad, chromedp.NavigateForward())
}

// Back moves back in history
func (b *Browser) Back() error {
	return b.run(b.timeouts.PageLoad, chromedp.NavigateBack())
}

// HardRefresh reloads the page bypassing the cache
func (b *Browser) HardRefresh() error {
	return b.run(b.timeouts.PageLoad, chromedp.ActionFunc(func(ctx context.Context) error {
		return page.Reload().WithIgnoreCache(true).Do(ctx)
	}))
}

// WaitForElement waits until the element is present and ready
func (b *Browser) WaitForElement(loc gridkit.Locator, timeout time.Duration) error {
	sel, by, err := query(loc)
	if err != nil {
		return err
	}
	b.logger.Info("waiting for element", "locator", loc.String(), "timeout", timeout)
	if err := b.run(timeout, chromedp.WaitReady(sel, by)); err != nil {
		return fmt.Errorf("element %s not ready after %v: %w", loc, timeout, err)
	}
	return nil
}

// Text waits for the element and returns its trimmed text
func (b *Browser) Text(loc gridkit.Locator) (string, error) {
	sel, by, err := query(loc)
	if err != nil {
		return "", err
	}
	var text string
	if err := b.run(b.timeouts.Element, chromedp.WaitReady(sel, by), chromedp.Text(sel, &text, by)); err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", loc, err)
	}
	return strings.TrimSpace(text), nil
}

// ExecuteScript evaluates script and decodes its result into a Go value.
// Undefined results come back as nil. Failures of scripts that write to
// console.error are swallowed.
func (b *Browser) ExecuteScript(script string) (interface{}, error) {
	b.logger.Info("executing script", "script", script)

	var obj *runtime.RemoteObject
	if err := b.run(b.timeouts.Implicit, chromedp.Evaluate(script, &obj, returnByValue)); err != nil {
		if strings.Contains(script, "console.error") {
			return nil, nil
		}
		b.logger.Error("script execution failed", "script", script, "error", err)
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	var out interface{}
	if obj != nil && len(obj.Value) > 0 {
		if err := json.Unmarshal([]byte(obj.Value), &out); err != nil {
			return nil, fmt.Errorf("decoding script result: %w", err)
		}
	}
	b.logger.Info("script executed successfully", "script", script)
	return out, nil
}

// returnByValue makes objects and arrays come back serialised in Value
// instead of as a remote handle.
func returnByValue(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true)
}

// PageScreenshot returns a PNG of the viewport
func (b *Browser) PageScreenshot() ([]byte, error) {
	var buf []byte
	if err := b.run(b.timeouts.Element, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// ElementScreenshot returns a PNG of the element found by loc
func (b *Browser) ElementScreenshot(loc gridkit.Locator) ([]byte, error) {
	sel, by, err := query(loc)
	if err != nil {
		return nil, err
	}
	b.logger.Info("capturing element screenshot", "locator", loc.String())
	var buf []byte
	if err := b.run(b.timeouts.Element, chromedp.Screenshot(sel, &buf, by)); err != nil {
		return nil, fmt.Errorf("failed to capture element screenshot: %w", err)
	}
	return buf, nil
}

// Maximize resizes the viewport to the configured window size
func (b *Browser) Maximize() error {
	w, h := b.opts.WindowWidth, b.opts.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = 1920, 1080
	}
	return b.run(b.timeouts.Implicit, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(int64(w), int64(h), 1, false).Do(ctx)
	}))
}
