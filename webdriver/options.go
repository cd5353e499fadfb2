package webdriver

import (
	"log/slog"

	"github.com/livefir/gridkit"
	"github.com/tebeka/selenium"
)

// DialFunc opens a remote WebDriver session. selenium.NewRemote is the default.
type DialFunc func(caps selenium.Capabilities, urlPrefix string) (selenium.WebDriver, error)

type options struct {
	logger   *slog.Logger
	timeouts gridkit.Timeouts
	dial     DialFunc
}

// Option configures a Helper or a Session
type Option func(*options)

// WithLogger sets the logger. The package default is gridkit.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeouts overrides the implicit, page load and element waits
func WithTimeouts(t gridkit.Timeouts) Option {
	return func(o *options) {
		o.timeouts = t
	}
}

// WithDialer replaces selenium.NewRemote, mostly for tests
func WithDialer(d DialFunc) Option {
	return func(o *options) {
		if d != nil {
			o.dial = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   gridkit.Logger(),
		timeouts: gridkit.DefaultTimeouts(),
		dial:     selenium.NewRemote,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
