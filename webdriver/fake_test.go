package webdriver

import (
	"errors"
	"time"

	"github.com/tebeka/selenium"
)

// fakeDriver implements the parts of selenium.WebDriver the helpers use.
// Calling anything else panics on the nil embedded interface.
type fakeDriver struct {
	selenium.WebDriver

	sessionID string
	elements  map[string]*fakeElement // keyed by "by=value"
	// appearAfter is the number of FindElement calls that fail before
	// elements become visible
	appearAfter int
	findCalls   int

	implicitWaits []time.Duration
	pageLoad      time.Duration
	maximized     bool
	cookiesClean  bool
	quit          bool
	navigations   []string
	scripts       []string

	scriptErr   error
	maximizeErr error
	png         []byte
	title       string
	url         string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		sessionID: "sess-123",
		elements:  map[string]*fakeElement{},
		png:       []byte("page-png"),
		title:     "Dashboard",
		url:       "https://example.test/home",
	}
}

func (f *fakeDriver) SessionID() string { return f.sessionID }

func (f *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	f.findCalls++
	if f.findCalls <= f.appearAfter {
		return nil, errors.New("no such element")
	}
	if e, ok := f.elements[by+"="+value]; ok {
		return e, nil
	}
	return nil, errors.New("no such element")
}

func (f *fakeDriver) WaitWithTimeout(cond selenium.Condition, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(f)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeDriver) SetImplicitWaitTimeout(d time.Duration) error {
	f.implicitWaits = append(f.implicitWaits, d)
	return nil
}

func (f *fakeDriver) SetPageLoadTimeout(d time.Duration) error {
	f.pageLoad = d
	return nil
}

func (f *fakeDriver) DeleteAllCookies() error {
	f.cookiesClean = true
	return nil
}

func (f *fakeDriver) MaximizeWindow(name string) error {
	if f.maximizeErr != nil {
		return f.maximizeErr
	}
	f.maximized = true
	return nil
}

func (f *fakeDriver) Quit() error {
	f.quit = true
	return nil
}

func (f *fakeDriver) Get(url string) error {
	f.navigations = append(f.navigations, "get:"+url)
	f.url = url
	return nil
}

func (f *fakeDriver) Title() (string, error)      { return f.title, nil }
func (f *fakeDriver) CurrentURL() (string, error) { return f.url, nil }

func (f *fakeDriver) Refresh() error {
	f.navigations = append(f.navigations, "refresh")
	return nil
}

func (f *fakeDriver) Forward() error {
	f.navigations = append(f.navigations, "forward")
	return nil
}

func (f *fakeDriver) Back() error {
	f.navigations = append(f.navigations, "back")
	return nil
}

func (f *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	f.scripts = append(f.scripts, script)
	if f.scriptErr != nil {
		return nil, f.scriptErr
	}
	return "ok", nil
}

func (f *fakeDriver) Screenshot() ([]byte, error) { return f.png, nil }

type fakeElement struct {
	selenium.WebElement
	text string
	png  []byte
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Screenshot(scroll bool) ([]byte, error) { return e.png, nil }
