package gridkit

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// SoftAssert collects assertion failures instead of stopping the test at the
// first one. Call AssertAll at the end of the test to report them.
//
//	sa := gridkit.NewSoftAssert()
//	sa.Equal("Dashboard", title, "page title")
//	sa.True(visible, "banner visible")
//	sa.AssertAll(t)
type SoftAssert struct {
	mu     sync.Mutex
	errors []string
}

// NewSoftAssert creates an empty SoftAssert
func NewSoftAssert() *SoftAssert {
	return &SoftAssert{}
}

// Errorf implements assert.TestingT so testify reports into the collector
func (s *SoftAssert) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.errors = append(s.errors, msg)
	s.mu.Unlock()
	Logger().Error("soft assertion failed", "failure", strings.TrimSpace(msg))
}

// Equal records a failure unless expected and actual are equal
func (s *SoftAssert) Equal(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	return assert.Equal(s, expected, actual, msgAndArgs...)
}

// NotEqual records a failure when expected and actual are equal
func (s *SoftAssert) NotEqual(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	return assert.NotEqual(s, expected, actual, msgAndArgs...)
}

// True records a failure unless value is true
func (s *SoftAssert) True(value bool, msgAndArgs ...interface{}) bool {
	return assert.True(s, value, msgAndArgs...)
}

// False records a failure unless value is false
func (s *SoftAssert) False(value bool, msgAndArgs ...interface{}) bool {
	return assert.False(s, value, msgAndArgs...)
}

// Contains records a failure unless container holds element
func (s *SoftAssert) Contains(container, element interface{}, msgAndArgs ...interface{}) bool {
	return assert.Contains(s, container, element, msgAndArgs...)
}

// Nil records a failure unless object is nil
func (s *SoftAssert) Nil(object interface{}, msgAndArgs ...interface{}) bool {
	return assert.Nil(s, object, msgAndArgs...)
}

// NotNil records a failure when object is nil
func (s *SoftAssert) NotNil(object interface{}, msgAndArgs ...interface{}) bool {
	return assert.NotNil(s, object, msgAndArgs...)
}

// NoError records a failure when err is not nil
func (s *SoftAssert) NoError(err error, msgAndArgs ...interface{}) bool {
	return assert.NoError(s, err, msgAndArgs...)
}

// Failed reports whether any assertion failed
func (s *SoftAssert) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) > 0
}

// Errors returns a copy of the collected failure messages
func (s *SoftAssert) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.errors))
	copy(out, s.errors)
	return out
}

// AssertAll reports every collected failure on t and clears the collector.
func (s *SoftAssert) AssertAll(t testing.TB) {
	t.Helper()
	s.mu.Lock()
	errs := s.errors
	s.errors = nil
	s.mu.Unlock()

	for i, e := range errs {
		t.Errorf("soft assertion %d/%d failed:\n%s", i+1, len(errs), e)
	}
}
