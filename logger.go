package gridkit

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the logger used by the package-level helpers.
// It falls back to slog.Default when none was set.
func Logger() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the logger used by the package-level helpers.
// Passing nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	defaultLogger.Store(l)
}
