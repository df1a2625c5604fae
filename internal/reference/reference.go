// Package reference defines the core domain types for bibliographic records.
package reference

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SourceRecord is one parsed input record (a BibTeX entry or a CSL-JSON item).
type SourceRecord struct {
	// Type is the entry type exactly as found in the source. BibTeX types are
	// lower-cased by the parser; unknown types are kept verbatim.
	Type string `json:"type"`
	// Key is the BibTeX citation key or the CSL id.
	Key string `json:"key,omitempty"`
	// Fields maps case-sensitive field names to string or structured values.
	Fields map[string]any `json:"fields"`
	// Party is filled in by the responsible-party resolver.
	Party *ResolvedParty `json:"party,omitempty"`
}

// NewSourceRecord creates an empty record of the given raw type.
func NewSourceRecord(rawType, key string) SourceRecord {
	return SourceRecord{
		Type:   rawType,
		Key:    key,
		Fields: make(map[string]any),
	}
}

// EntryType resolves the raw type to a known entry type.
func (r SourceRecord) EntryType() EntryType {
	return ParseEntryType(r.Type)
}

// Get returns the raw value of a field.
func (r SourceRecord) Get(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Has reports whether a field is present with a non-empty value.
func (r SourceRecord) Has(name string) bool {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the field value coerced to a string, or "" if absent.
func (r SourceRecord) String(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(ValueString(v))
}

// First returns the first non-empty string value among the given fields.
func (r SourceRecord) First(names ...string) string {
	for _, name := range names {
		if s := r.String(name); s != "" {
			return s
		}
	}
	return ""
}

// Set stores a field value.
func (r *SourceRecord) Set(name string, value any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[name] = value
}

// FieldNames returns the field names in sorted order.
func (r SourceRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy whose field map can be modified independently.
func (r SourceRecord) Clone() SourceRecord {
	out := r
	out.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	if r.Party != nil {
		p := *r.Party
		p.PartyList = append([]string(nil), r.Party.PartyList...)
		out.Party = &p
	}
	return out
}

// ValueString coerces a source value to a string.
// Date objects render through FormatDate, arrays use their first element.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return ValueString(t[0])
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case map[string]any:
		if d := FormatDate(t); d != "" {
			return d
		}
		if lit, ok := t["literal"]; ok {
			return ValueString(lit)
		}
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}
