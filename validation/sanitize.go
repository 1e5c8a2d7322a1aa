package validation

import "strings"

var markupStripper = strings.NewReplacer("<", "", ">", "")

// SanitizeString trims s and removes angle brackets.
func SanitizeString(s string) string {
	return markupStripper.Replace(strings.TrimSpace(s))
}

// SanitizeData walks decoded JSON (maps, slices, strings) and sanitizes every
// string value. Keys and non-string scalars are returned unchanged.
func SanitizeData(v any) any {
	switch t := v.(type) {
	case string:
		return SanitizeString(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = SanitizeData(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = SanitizeData(item)
		}
		return out
	default:
		return v
	}
}
