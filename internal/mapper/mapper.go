// Package mapper translates source records into Zotero items.
//
// Each item type has a field whitelist and an ordered list of transforms.
// Source fields that no transform consumes are copied when whitelisted and
// otherwise written to the extra field, so mapping never fails.
package mapper

import (
	"strings"

	"github.com/matsen/bibnow/internal/party"
	"github.com/matsen/bibnow/internal/reference"
)

// creatorRole gives the Zotero creator types used for authors and editors of
// an item type.
type creatorRole struct {
	primary string
	editor  string
}

var creatorRoles = map[string]creatorRole{
	"journalArticle":      {"author", "editor"},
	"book":                {"author", "editor"},
	"bookSection":         {"author", "editor"},
	"conferencePaper":     {"author", "editor"},
	"thesis":              {"author", "contributor"},
	"report":              {"author", "contributor"},
	"webpage":             {"author", "contributor"},
	"case":                {"author", "contributor"},
	"bill":                {"sponsor", "contributor"},
	"hearing":             {"contributor", "contributor"},
	"presentation":        {"presenter", "contributor"},
	"manuscript":          {"author", "contributor"},
	"dataset":             {"author", "contributor"},
	"document":            {"author", "editor"},
	"magazineArticle":     {"author", "contributor"},
	"newspaperArticle":    {"author", "contributor"},
	"dictionaryEntry":     {"author", "editor"},
	"encyclopediaArticle": {"author", "editor"},
	"interview":           {"interviewee", "contributor"},
	"audioRecording":      {"performer", "contributor"},
	"videoRecording":      {"director", "contributor"},
	"statute":             {"author", "contributor"},
}

// Map maps a record using its own entry type.
func Map(rec reference.SourceRecord) (reference.DestinationRecord, []MappingWarning) {
	return MapAs(rec, rec.EntryType())
}

// MapAs maps a record as the given entry type.
func MapAs(rec reference.SourceRecord, et reference.EntryType) (reference.DestinationRecord, []MappingWarning) {
	itemType := et.ItemType()
	if _, ok := whitelists[itemType]; !ok {
		et = reference.Document
		itemType = et.ItemType()
	}

	d := newDraft(itemType)
	claimed := make(map[string]bool)
	for _, t := range handlers(et) {
		for _, name := range t.apply(rec, d) {
			claimed[name] = true
		}
	}

	for _, name := range rec.FieldNames() {
		if claimed[name] || ignoredFields[name] {
			continue
		}
		value := rec.String(name)
		if value == "" {
			continue
		}
		if label, ok := canonicalExtra[name]; ok {
			raw, _ := rec.Get(name)
			d.spill(name, label, overflowString(raw), reasonCanonical)
			continue
		}
		if d.allows(name) {
			if existing, ok := d.fields[name]; ok && existing != value {
				d.spill(name, name, value, reasonDuplicate)
				continue
			}
			d.fields[name] = value
			continue
		}
		raw, _ := rec.Get(name)
		d.spill(name, name, overflowString(raw), reasonUnmapped)
	}

	for _, name := range sortedKeys(d.fields) {
		if !d.allows(name) {
			d.spill(name, name, d.fields[name], reasonNotAllowed)
			delete(d.fields, name)
		}
	}

	dest := reference.NewDestinationRecord(itemType)
	dest.Fields = d.fields
	dest.Tags = d.tags
	dest.Extra = d.extra()
	dest.Creators = assignRoles(party.BuildCreators(rec), itemType)
	return dest, d.warnings
}

// overflowString renders a whole source value for the extra field. Array
// elements are joined with "; " and CSL names render as "Family, Given".
func overflowString(v any) string {
	var parts []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
	case []any:
		for _, e := range t {
			if s := overflowString(e); s != "" {
				parts = append(parts, s)
			}
		}
	case map[string]any:
		for _, k := range []string{"family", "given", "literal"} {
			if _, ok := t[k]; ok {
				return party.FormatName(t)
			}
		}
		return strings.TrimSpace(reference.ValueString(t))
	default:
		return strings.TrimSpace(reference.ValueString(t))
	}
	return strings.Join(parts, "; ")
}

// assignRoles rewrites generic author/editor creator types to the ones the
// item type accepts.
func assignRoles(creators []reference.Creator, itemType string) []reference.Creator {
	role, ok := creatorRoles[itemType]
	if !ok {
		return creators
	}
	out := make([]reference.Creator, len(creators))
	for i, c := range creators {
		switch c.CreatorType {
		case reference.CreatorAuthor:
			c.CreatorType = role.primary
		case reference.CreatorEditor:
			c.CreatorType = role.editor
		}
		out[i] = c
	}
	return out
}
