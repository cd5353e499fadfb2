package gridkit

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Selector is an element location strategy
type Selector string

const (
	ByClass   Selector = "class"
	ByID      Selector = "id"
	ByCSS     Selector = "css"
	ByXPath   Selector = "xpath"
	ByName    Selector = "name"
	ByTagName Selector = "tagname"
)

var selectors = map[Selector]struct{}{
	ByClass:   {},
	ByID:      {},
	ByCSS:     {},
	ByXPath:   {},
	ByName:    {},
	ByTagName: {},
}

// ParseSelector resolves a strategy name case-insensitively
func ParseSelector(s string) (Selector, error) {
	sel := Selector(cases.Fold().String(strings.TrimSpace(s)))
	if _, ok := selectors[sel]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLocator, s)
	}
	return sel, nil
}

// Locator pairs a strategy with the value to search for.
type Locator struct {
	Strategy Selector
	Value    string
}

// Locate builds a Locator from a strategy name and value
func Locate(strategy, value string) (Locator, error) {
	sel, err := ParseSelector(strategy)
	if err != nil {
		return Locator{}, err
	}
	return Locator{Strategy: sel, Value: value}, nil
}

// String renders the locator the way it appears in log lines
func (l Locator) String() string {
	return fmt.Sprintf("['%s','%s']", l.Strategy, l.Value)
}
