package gridkit

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func TestMergeCapabilities(t *testing.T) {
	tests := []struct {
		name         string
		base         string
		override     string
		want         Capabilities
		wantWarnings int
	}{
		{
			name:     "override appended",
			base:     "a=1;b=true",
			override: "c=2",
			want:     Capabilities{"a": "1", "b": true, "c": "2"},
		},
		{
			name:         "both empty",
			base:         "",
			override:     "",
			want:         Capabilities{},
			wantWarnings: 1,
		},
		{
			name:     "override without delimiter ignored",
			base:     "a=1",
			override: "garbage",
			want:     Capabilities{"a": "1"},
		},
		{
			name:     "override shadows base",
			base:     "build=nightly;video=false",
			override: "video=TRUE",
			want:     Capabilities{"build": "nightly", "video": true},
		},
		{
			name:     "override into empty base",
			base:     "",
			override: "platformName=android",
			want:     Capabilities{"platformName": "android"},
		},
		{
			name:         "malformed pair skipped",
			base:         "a=1;bad;c=3",
			want:         Capabilities{"a": "1", "c": "3"},
			wantWarnings: 1,
		},
		{
			name: "whitespace trimmed and blanks ignored",
			base: " name = login test ; ;console=False;",
			want: Capabilities{"name": "login test", "console": false},
		},
		{
			name: "first equals splits",
			base: "tunnelName=a=b",
			want: Capabilities{"tunnelName": "a=b"},
		},
		{
			name: "last duplicate wins",
			base: "a=1;a=2",
			want: Capabilities{"a": "2"},
		},
		{
			name:         "missing key or value",
			base:         "=x;y=;z=1",
			want:         Capabilities{"z": "1"},
			wantWarnings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordLogs(t)

			got := MergeCapabilities(tt.base, tt.override)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeCapabilities(%q, %q) = %v, want %v", tt.base, tt.override, got, tt.want)
			}
			if n := rec.count("WARN"); n != tt.wantWarnings {
				t.Errorf("logged %d warnings, want %d", n, tt.wantWarnings)
			}
		})
	}
}

func TestMergeCapabilitiesReturnsFreshMaps(t *testing.T) {
	first := MergeCapabilities("a=1", "")
	first["injected"] = "x"

	second := MergeCapabilities("b=2", "")
	if _, ok := second["injected"]; ok {
		t.Error("state leaked between calls")
	}
	if _, ok := second["a"]; ok {
		t.Error("keys from the previous call leaked into the next one")
	}
}

func TestMergeCapabilitiesFromEnv(t *testing.T) {
	t.Setenv(CapsEnvVar, "geoLocation=DE;network=true")

	got := MergeCapabilitiesFromEnv("browserName=Chrome;network=false")
	want := Capabilities{"browserName": "Chrome", "geoLocation": "DE", "network": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseCapabilitiesGeneratedValues(t *testing.T) {
	want := Capabilities{}
	var pairs []string
	for i := 0; i < 10; i++ {
		key := "k" + gofakeit.LetterN(8)
		value := gofakeit.Word()
		want[key] = value
		pairs = append(pairs, key+"="+value)
	}

	got := ParseCapabilities(strings.Join(pairs, ";"))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseCapabilitiesStrict(t *testing.T) {
	caps, err := ParseCapabilitiesStrict("a=1;b=false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(caps, Capabilities{"a": "1", "b": false}) {
		t.Errorf("caps = %v", caps)
	}

	_, err = ParseCapabilitiesStrict("a=1;bad;c=3")
	var mpe *MalformedPairError
	if !errors.As(err, &mpe) {
		t.Fatalf("err = %v, want *MalformedPairError", err)
	}
	if mpe.Pair != "bad" {
		t.Errorf("Pair = %q, want %q", mpe.Pair, "bad")
	}
}

func TestCapabilitiesHelpers(t *testing.T) {
	caps := Capabilities{"platformName": "iOS", "accessKey": "s3cr3t", "build": "b1"}

	if got := caps.Platform(); got != "iOS" {
		t.Errorf("Platform() = %q", got)
	}
	if !caps.IsMobile() {
		t.Error("iOS should be mobile")
	}
	if (Capabilities{"platformName": "Windows 11"}).IsMobile() {
		t.Error("Windows should not be mobile")
	}
	if (Capabilities{}).IsMobile() {
		t.Error("missing platform should not be mobile")
	}

	if got := caps.Keys(); !reflect.DeepEqual(got, []string{"accessKey", "build", "platformName"}) {
		t.Errorf("Keys() = %v", got)
	}

	red := caps.Redacted()
	if red["accessKey"] != "****" {
		t.Errorf("accessKey not redacted: %v", red["accessKey"])
	}
	if caps["accessKey"] != "s3cr3t" {
		t.Error("Redacted modified the original map")
	}
	if s := red.String(); s != "{accessKey=****, build=b1, platformName=iOS}" {
		t.Errorf("String() = %q", s)
	}
}

func TestSessionCreationErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := &SessionCreationError{
		Capabilities: Capabilities{"build": "b1", "accessKey": "k"},
		Err:          cause,
	}

	if !errors.Is(err, cause) {
		t.Error("should unwrap to cause")
	}
	msg := err.Error()
	for _, want := range []string{"driver was not created", "connection refused", "build=b1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "accessKey=k") {
		t.Errorf("message leaks the access key: %q", msg)
	}
}
