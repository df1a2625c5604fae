// Package party resolves the party responsible for a record and parses
// creator names.
package party

import (
	"strings"
	"unicode"

	"github.com/matsen/bibnow/internal/reference"
)

// UnknownLastname is used when a record names no responsible party.
const UnknownLastname = "Unknown"

// priorityFields are scanned in order; the first non-empty one wins.
// authority comes last because CSL legal records use it for the court.
var priorityFields = []string{
	"author",
	"editor",
	"court",
	"institution",
	"organization",
	"legislativebody",
	"director",
	"producer",
	"authority",
}

// Resolve finds the responsible party of a record.
func Resolve(rec reference.SourceRecord) reference.ResolvedParty {
	for _, field := range priorityFields {
		v, ok := rec.Get(field)
		if !ok {
			continue
		}
		parties := partyNames(v)
		if len(parties) == 0 {
			continue
		}
		return reference.ResolvedParty{
			Raw:           strings.Join(parties, " and "),
			PartyList:     parties,
			FirstLastname: LastName(parties[0]),
			Multiple:      len(parties) > 1,
		}
	}
	return reference.ResolvedParty{FirstLastname: UnknownLastname}
}

// Enrich stores the resolved party on the record.
func Enrich(rec *reference.SourceRecord) {
	p := Resolve(*rec)
	rec.Party = &p
}

// LastName derives the sortable last name of a single party string:
// the text before the first comma, or else the final word.
func LastName(party string) string {
	party = strings.TrimSpace(party)
	var name string
	if i := strings.Index(party, ","); i >= 0 {
		name = party[:i]
	} else if words := strings.Fields(party); len(words) > 0 {
		name = words[len(words)-1]
	}

	name = stripPunct(name)
	if name == "" {
		return UnknownLastname
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// partyNames renders a field value as a list of party strings.
func partyNames(v any) []string {
	switch t := v.(type) {
	case string:
		return SplitNames(t)
	case []any:
		var out []string
		for _, item := range t {
			switch n := item.(type) {
			case map[string]any:
				if s := FormatName(n); s != "" {
					out = append(out, s)
				}
			case string:
				out = append(out, SplitNames(n)...)
			}
		}
		return out
	case map[string]any:
		if s := FormatName(t); s != "" {
			return []string{s}
		}
	}
	if s := strings.TrimSpace(reference.ValueString(v)); s != "" {
		return []string{s}
	}
	return nil
}

// FormatName renders a CSL name object as "Family, Given" or its literal.
func FormatName(n map[string]any) string {
	if lit := strings.TrimSpace(reference.ValueString(n["literal"])); lit != "" {
		return lit
	}
	family := cslFamily(n)
	given := strings.TrimSpace(reference.ValueString(n["given"]))
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

func cslFamily(n map[string]any) string {
	family := strings.TrimSpace(reference.ValueString(n["family"]))
	if particle := strings.TrimSpace(reference.ValueString(n["non-dropping-particle"])); particle != "" && family != "" {
		family = particle + " " + family
	}
	return family
}

// SplitNames splits a BibTeX name list on " and ", ignoring separators
// inside braces.
func SplitNames(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n':
			if depth == 0 && i+4 < len(s) && strings.EqualFold(s[i+1:i+4], "and") && isBlank(s[i+4]) {
				out = appendName(out, s[start:i])
				i += 4
				start = i + 1
			}
		}
	}
	return appendName(out, s[start:])
}

func appendName(names []string, name string) []string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return names
	}
	return append(names, name)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// stripPunct keeps letters, digits and hyphens.
func stripPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
