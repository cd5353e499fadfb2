package gridkit

import (
	"errors"
	"testing"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{in: "id", want: ByID},
		{in: "ID", want: ByID},
		{in: " XPath ", want: ByXPath},
		{in: "css", want: ByCSS},
		{in: "Class", want: ByClass},
		{in: "name", want: ByName},
		{in: "TagName", want: ByTagName},
		{in: "link text", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLocator) {
					t.Errorf("err = %v, want ErrUnsupportedLocator", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSelector(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	loc, err := Locate("XPATH", "//button[@id='submit']")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if loc.Strategy != ByXPath {
		t.Errorf("Strategy = %q", loc.Strategy)
	}
	if got := loc.String(); got != "['xpath','//button[@id='submit']']" {
		t.Errorf("String() = %q", got)
	}

	if _, err := Locate("shadow", "x"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestDefaultTimeouts(t *testing.T) {
	to := DefaultTimeouts()
	if to.Implicit != ShortWait || to.PageLoad != LongWait || to.Element != BalancedWait {
		t.Errorf("DefaultTimeouts() = %+v", to)
	}
	if VeryLongestWait.Seconds() != 300 {
		t.Errorf("VeryLongestWait = %v", VeryLongestWait)
	}
}
