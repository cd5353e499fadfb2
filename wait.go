package gridkit

import "time"

// Standard wait durations for element lookups, page loads and polling.
const (
	ShortestWait      = 1 * time.Second
	ShorterWait       = 3 * time.Second
	VeryShortWait     = 5 * time.Second
	ShortWait         = 10 * time.Second
	MediumWait        = 15 * time.Second
	StandardWait      = 20 * time.Second
	BalancedWait      = 30 * time.Second
	ExtendedWait      = 45 * time.Second
	LongWait          = 60 * time.Second
	VeryLongWait      = 90 * time.Second
	ExtremelyLongWait = 120 * time.Second
	LongerWait        = 180 * time.Second
	LongestWait       = 240 * time.Second
	VeryLongestWait   = 300 * time.Second
)

// Timeouts groups the waits a browser session is configured with.
type Timeouts struct {
	// Implicit is the element lookup wait applied outside explicit waits
	Implicit time.Duration
	// PageLoad bounds navigation
	PageLoad time.Duration
	// Element is the default explicit wait for element lookups
	Element time.Duration
}

// DefaultTimeouts returns the waits used when a session is created
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Implicit: ShortWait,
		PageLoad: LongWait,
		Element:  BalancedWait,
	}
}
