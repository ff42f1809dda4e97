package config

import (
	"fmt"
	"sort"
)

// Well-known setting keys.
const (
	KeyBrowserName  = "browserName"
	KeyBaseURL      = "baseUrl"
	KeyBaseURLPie   = "baseUrl_pie"
	KeyBaseURLStage = "baseUrl_stg"
)

// RequiredKeys are the keys a config file is expected to carry.
var RequiredKeys = []string{KeyBrowserName, KeyBaseURLPie, KeyBaseURLStage}

// Settings maps setting names to values. Keys the harness does not know
// about are passed through untouched.
type Settings map[string]any

// Clone returns a deep copy of the settings. Nested maps and lists are
// copied too so the clone shares no mutable state with s.
func (s Settings) Clone() Settings {
	if s == nil {
		return Settings{}
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Settings:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// String returns the value for key formatted as a string.
// Absent and nil values yield "".
func (s Settings) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Missing returns the keys that are absent or empty, in the given order.
func (s Settings) Missing(keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if s.String(k) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// Keys returns the setting names in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
