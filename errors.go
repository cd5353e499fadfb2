package gridkit

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the helper packages
var (
	ErrUnsupportedLocator = errors.New("unsupported locator strategy")
	ErrNilDriver          = errors.New("driver is nil")
)

// PortAllocationError is returned when no ephemeral port could be bound
type PortAllocationError struct {
	Err error
}

func (e *PortAllocationError) Error() string {
	return fmt.Sprintf("failed to allocate a free port: %v", e.Err)
}

func (e *PortAllocationError) Unwrap() error {
	return e.Err
}

// SessionCreationError wraps any failure while creating or initialising a
// remote browser session. Capabilities holds the options that were sent.
type SessionCreationError struct {
	Capabilities Capabilities
	Err          error
}

func (e *SessionCreationError) Error() string {
	var b strings.Builder
	b.WriteString("[DRIVER CREATION ERROR] driver was not created")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Capabilities) > 0 {
		b.WriteString(" (capabilities: ")
		b.WriteString(e.Capabilities.Redacted().String())
		b.WriteString(")")
	}
	return b.String()
}

func (e *SessionCreationError) Unwrap() error {
	return e.Err
}

// MalformedPairError describes a capability entry without a key=value shape
type MalformedPairError struct {
	Pair string
}

func (e *MalformedPairError) Error() string {
	return fmt.Sprintf("malformed capability pair %q: expected key=value", e.Pair)
}
