package mapper

import (
	"sort"
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

// MappingWarning reports a source field that had no home in the destination
// schema and was written to extra instead.
type MappingWarning struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w MappingWarning) String() string {
	return w.Field + " -> extra (" + w.Reason + ")"
}

// Overflow reasons.
const (
	reasonCanonical  = "canonical extra field"
	reasonUnmapped   = "no destination field"
	reasonNotAllowed = "not allowed for item type"
	reasonDuplicate  = "conflicts with mapped value"
)

// canonicalExtra maps source names to the labels used for well-known extra
// lines.
var canonicalExtra = map[string]string{
	"DOI":                "DOI",
	"doi":                "DOI",
	"PMID":               "PMID",
	"pmid":               "PMID",
	"PMCID":              "PMCID",
	"pmcid":              "PMCID",
	"arxiv":              "arXiv",
	"eprint":             "eprint",
	"status":             "status",
	"original-date":      "original-date",
	"original-title":     "original-title",
	"original-publisher": "original-publisher",
}

// canonicalOrder fixes the position of canonical lines in extra.
var canonicalOrder = []string{
	"DOI", "PMID", "PMCID", "arXiv", "eprint", "status",
	"original-date", "original-title", "original-publisher",
}

var canonicalLabels = func() map[string]bool {
	out := make(map[string]bool, len(canonicalOrder))
	for _, l := range canonicalOrder {
		out[l] = true
	}
	return out
}()

// ignoredFields are handled by dedicated logic and never overflow.
var ignoredFields = map[string]bool{
	"type":         true,
	"id":           true,
	"ID":           true,
	"entrytype":    true,
	"author":       true,
	"editor":       true,
	"title":        true,
	"year":         true,
	"month":        true,
	"date":         true,
	"issued":       true,
	"citation-key": true,
}

// draft is a destination record under construction.
type draft struct {
	itemType string
	fields   map[string]string
	notes    []string
	overflow map[string]string
	tags     []reference.Tag
	warnings []MappingWarning
}

func newDraft(itemType string) *draft {
	return &draft{
		itemType: itemType,
		fields:   make(map[string]string),
		overflow: make(map[string]string),
	}
}

func (d *draft) allows(field string) bool {
	return Allowed(d.itemType, field)
}

func (d *draft) set(field, value string) {
	if value = strings.TrimSpace(value); value != "" {
		d.fields[field] = value
	}
}

// rename moves a destination field, keeping an existing target value.
func (d *draft) rename(from, to string) {
	v, ok := d.fields[from]
	if !ok {
		return
	}
	delete(d.fields, from)
	if _, exists := d.fields[to]; !exists {
		d.fields[to] = v
	}
}

func (d *draft) note(text string) {
	if text = strings.TrimSpace(text); text != "" {
		d.notes = append(d.notes, text)
	}
}

// spill writes a value to the overflow buffer. The first value for a label
// wins.
func (d *draft) spill(field, label, value, reason string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, exists := d.overflow[label]; exists {
		return
	}
	d.overflow[label] = value
	d.warnings = append(d.warnings, MappingWarning{
		Field:  field,
		Label:  label,
		Value:  value,
		Reason: reason,
	})
}

// extra renders notes followed by overflow lines: canonical labels in fixed
// order, then the rest sorted.
func (d *draft) extra() string {
	lines := append([]string(nil), d.notes...)
	for _, label := range canonicalOrder {
		if v, ok := d.overflow[label]; ok {
			lines = append(lines, label+": "+v)
		}
	}

	var rest []string
	for label := range d.overflow {
		if !canonicalLabels[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		lines = append(lines, label+": "+d.overflow[label])
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
