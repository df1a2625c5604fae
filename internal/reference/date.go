package reference

import "strings"

// RawDate returns the "raw" (or "literal") member of a CSL date object.
// Plain strings are returned unchanged.
func RawDate(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, key := range []string{"raw", "literal"} {
			if s, ok := t[key]; ok {
				if str := strings.TrimSpace(ValueString(s)); str != "" {
					return str
				}
			}
		}
	}
	return ""
}

// FormatDate renders a CSL date, preferring the raw form and falling back to
// the first date-parts entry joined with "-".
func FormatDate(v any) string {
	if raw := RawDate(v); raw != "" {
		return raw
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	parts, ok := m["date-parts"].([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	first, ok := parts[0].([]any)
	if !ok {
		return ""
	}
	var out []string
	for _, p := range first {
		if p == nil {
			continue
		}
		if s := strings.TrimSpace(ValueString(p)); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "-")
}
