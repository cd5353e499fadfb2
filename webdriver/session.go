package webdriver

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/livefir/gridkit"
	"github.com/tebeka/selenium"
)

// OptionsKey is the vendor capability the grid options are nested under
const OptionsKey = "lt:options"

// Capabilities copied to the top level of the request in addition to OptionsKey
var topLevelCapabilities = []string{"browserName", "browserVersion", "platformName"}

// Config identifies the grid a session is created on.
type Config struct {
	Username  string `yaml:"username" validate:"required"`
	AccessKey string `yaml:"access_key" validate:"required"`
	// GridURL is the hub address, with or without scheme,
	// e.g. "hub.lambdatest.com/wd/hub"
	GridURL string `yaml:"grid_url" validate:"required"`
	// Scheme is used when GridURL has none; defaults to https
	Scheme string `yaml:"scheme" validate:"omitempty,oneof=http https"`
}

var validate = validator.New()

// Validate checks that the grid coordinates are complete
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid grid config: %w", err)
	}
	return nil
}

// RemoteURL returns the hub URL with the credentials embedded
func (c Config) RemoteURL() (*url.URL, error) {
	raw := c.GridURL
	if !strings.Contains(raw, "://") {
		scheme := c.Scheme
		if scheme == "" {
			scheme = "https"
		}
		raw = scheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid grid url %q: %w", c.GridURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid grid url %q: missing host", c.GridURL)
	}
	u.User = url.UserPassword(c.Username, c.AccessKey)
	return u, nil
}

// Session is a remote browser session on the grid.
type Session struct {
	Driver       selenium.WebDriver
	ID           string
	Capabilities gridkit.Capabilities
	// CreationTime is how long the grid took to hand out the session
	CreationTime time.Duration

	logger *slog.Logger
}

// NewSession creates a remote session with caps nested under OptionsKey.
// Once the grid answers, cookies are cleared, the implicit and page load
// waits applied and, unless caps target android or ios, the window is
// maximised. Any failure comes back as *gridkit.SessionCreationError.
func NewSession(cfg Config, caps gridkit.Capabilities, opts ...Option) (*Session, error) {
	o := newOptions(opts)
	caps = caps.Clone()

	fail := func(err error) (*Session, error) {
		o.logger.Error("[DRIVER CREATION ERROR] driver was not created", "error", err, "capabilities", caps.Redacted().String())
		return nil, &gridkit.SessionCreationError{Capabilities: caps, Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	remote, err := cfg.RemoteURL()
	if err != nil {
		return fail(err)
	}

	request := BuildCapabilities(caps)
	o.logger.Info("creating session", "lt_options", caps.Redacted().String(), "uri", remote.Redacted())

	start := time.Now()
	driver, err := o.dial(request, remote.String())
	if err != nil {
		return fail(err)
	}
	elapsed := time.Since(start)

	s := &Session{
		Driver:       driver,
		ID:           driver.SessionID(),
		Capabilities: caps,
		CreationTime: elapsed,
		logger:       o.logger,
	}
	o.logger.Info("driver created", "creation_time", elapsed, "session_id", s.ID)

	if err := s.prepare(o.timeouts); err != nil {
		if qerr := driver.Quit(); qerr != nil {
			o.logger.Warn("failed to quit half-initialised session", "session_id", s.ID, "error", qerr)
		}
		return fail(err)
	}
	return s, nil
}

func (s *Session) prepare(t gridkit.Timeouts) error {
	if err := s.Driver.DeleteAllCookies(); err != nil {
		return fmt.Errorf("deleting cookies: %w", err)
	}
	if err := s.Driver.SetImplicitWaitTimeout(t.Implicit); err != nil {
		return fmt.Errorf("setting implicit wait: %w", err)
	}
	if err := s.Driver.SetPageLoadTimeout(t.PageLoad); err != nil {
		return fmt.Errorf("setting page load timeout: %w", err)
	}
	if s.Capabilities.IsMobile() {
		s.logger.Info("skipping window maximise on mobile platform", "platform", s.Capabilities.Platform())
		return nil
	}
	if err := s.Driver.MaximizeWindow(""); err != nil {
		return fmt.Errorf("maximising window: %w", err)
	}
	return nil
}

// BuildCapabilities nests caps under OptionsKey and lifts the browser and
// platform names to the top level where grids expect them.
func BuildCapabilities(caps gridkit.Capabilities) selenium.Capabilities {
	out := selenium.Capabilities{OptionsKey: map[string]interface{}(caps)}
	for _, k := range topLevelCapabilities {
		if v, ok := caps[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Helper returns a Helper bound to the session's driver
func (s *Session) Helper(opts ...Option) *Helper {
	return NewHelper(s.Driver, append([]Option{WithLogger(s.logger)}, opts...)...)
}

// Quit ends the session
func (s *Session) Quit() error {
	if s == nil {
		return Quit(nil)
	}
	return Quit(s.Driver)
}

// Quit ends the session behind driver. A nil driver is logged and reported
// as gridkit.ErrNilDriver.
func Quit(driver selenium.WebDriver) error {
	if driver == nil {
		gridkit.Logger().Error("driver object received is nil")
		return gridkit.ErrNilDriver
	}
	if err := driver.Quit(); err != nil {
		return fmt.Errorf("failed to quit driver: %w", err)
	}
	gridkit.Logger().Info("driver closed")
	return nil
}
