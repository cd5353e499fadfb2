package gridkit

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// CapsEnvVar names the environment variable holding capability overrides
const CapsEnvVar = "CAPS"

const pairSeparator = ";"

// Capabilities maps capability names to string or bool values.
type Capabilities map[string]any

// ParseCapabilities turns a semicolon-delimited list of key=value pairs into
// a fresh map. Keys and values are trimmed, "true"/"false" in any case become
// booleans and later duplicates overwrite earlier ones. An entry without a
// key, a value or the "=" delimiter is skipped with a warning.
func ParseCapabilities(list string) Capabilities {
	caps := Capabilities{}
	for _, entry := range strings.Split(list, pairSeparator) {
		key, value, err := parsePair(entry)
		if err != nil {
			Logger().Warn("either key or value is missing, skipping capability", "pair", entry)
			continue
		}
		if key == "" {
			continue
		}
		caps[key] = value
	}
	return caps
}

// ParseCapabilitiesStrict is ParseCapabilities but fails on the first
// malformed entry instead of skipping it.
func ParseCapabilitiesStrict(list string) (Capabilities, error) {
	caps := Capabilities{}
	for _, entry := range strings.Split(list, pairSeparator) {
		key, value, err := parsePair(entry)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		caps[key] = value
	}
	return caps, nil
}

// parsePair splits one entry at its first "=". A blank entry returns an empty
// key and no error.
func parsePair(entry string) (string, any, error) {
	if strings.TrimSpace(entry) == "" {
		return "", nil, nil
	}
	key, value, ok := strings.Cut(entry, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !ok || key == "" || value == "" {
		return "", nil, &MalformedPairError{Pair: entry}
	}
	return key, coerce(value), nil
}

func coerce(value string) any {
	switch {
	case strings.EqualFold(value, "true"):
		return true
	case strings.EqualFold(value, "false"):
		return false
	default:
		return value
	}
}

// MergeCapabilities parses base together with override. The override is only
// used when it contains at least one "=", in which case its entries are
// appended after base and win on duplicate keys.
func MergeCapabilities(base, override string) Capabilities {
	if strings.Contains(override, "=") {
		Logger().Info("capability overrides supplied", "caps", override)
		return ParseCapabilities(base + pairSeparator + override)
	}
	if base == "" {
		Logger().Warn("no capabilities supplied, returning empty capabilities")
		return Capabilities{}
	}
	return ParseCapabilities(base)
}

// MergeCapabilitiesFromEnv merges base with the overrides found in $CAPS
func MergeCapabilitiesFromEnv(base string) Capabilities {
	return MergeCapabilities(base, os.Getenv(CapsEnvVar))
}

// Platform returns the platformName capability or "" when it is absent
func (c Capabilities) Platform() string {
	if v, ok := c["platformName"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// IsMobile reports whether the capabilities target an android or ios device
func (c Capabilities) IsMobile() bool {
	p := c.Platform()
	return strings.EqualFold(p, "android") || strings.EqualFold(p, "ios")
}

// Clone returns a shallow copy
func (c Capabilities) Clone() Capabilities {
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the capability names in sorted order
func (c Capabilities) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Redacted returns a copy with secret-looking values masked, for logging.
func (c Capabilities) Redacted() Capabilities {
	out := c.Clone()
	for k := range out {
		if isSecretKey(k) {
			out[k] = "****"
		}
	}
	return out
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range []string{"accesskey", "access_key", "password", "secret", "token"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// String renders the capabilities as sorted key=value pairs
func (c Capabilities) String() string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
