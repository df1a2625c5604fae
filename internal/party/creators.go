package party

import (
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

// nameSuffixes stay attached to the last name.
var nameSuffixes = map[string]bool{
	"jr":  true,
	"jr.": true,
	"sr":  true,
	"sr.": true,
	"ii":  true,
	"iii": true,
	"iv":  true,
}

// fallbackFields supply a literal creator when a record has no author or
// editor.
var fallbackFields = []string{"court", "authority", "legislativebody", "institution"}

// ParseCreators converts an author-like field value into creators.
// Strings are BibTeX name lists; arrays are CSL name objects.
func ParseCreators(raw any, creatorType string) []reference.Creator {
	var out []reference.Creator
	switch t := raw.(type) {
	case nil:
		return nil
	case string:
		for _, name := range SplitNames(t) {
			out = append(out, parseName(name, creatorType))
		}
	case []any:
		for _, item := range t {
			switch n := item.(type) {
			case map[string]any:
				if c, ok := cslCreator(n, creatorType); ok {
					out = append(out, c)
				}
			case string:
				out = append(out, ParseCreators(n, creatorType)...)
			}
		}
	case map[string]any:
		if c, ok := cslCreator(t, creatorType); ok {
			out = append(out, c)
		}
	}
	return out
}

// BuildCreators returns author creators followed by editor creators. When the
// record names neither, a single literal author is taken from the court,
// authority, legislative body or institution, or "Unknown". The result is
// never empty.
func BuildCreators(rec reference.SourceRecord) []reference.Creator {
	creators := ParseCreators(rec.Fields["author"], reference.CreatorAuthor)
	creators = append(creators, ParseCreators(rec.Fields["editor"], reference.CreatorEditor)...)
	if len(creators) > 0 {
		return creators
	}

	name := UnknownLastname
	for _, field := range fallbackFields {
		if v, ok := rec.Get(field); ok {
			if parties := partyNames(v); len(parties) > 0 {
				name = stripBraces(parties[0])
				break
			}
		}
	}
	return []reference.Creator{{CreatorType: reference.CreatorAuthor, Name: name}}
}

func parseName(name, creatorType string) reference.Creator {
	name = strings.TrimSpace(name)

	if isBraceWrapped(name) {
		return reference.Creator{CreatorType: creatorType, Name: strings.TrimSpace(name[1 : len(name)-1])}
	}

	if i := strings.Index(name, ","); i >= 0 {
		return reference.Creator{
			CreatorType: creatorType,
			LastName:    stripBraces(strings.TrimSpace(name[:i])),
			FirstName:   stripBraces(strings.TrimSpace(name[i+1:])),
		}
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		return reference.Creator{CreatorType: creatorType, LastName: stripBraces(parts[0])}
	}

	var first, last string
	if nameSuffixes[strings.ToLower(parts[len(parts)-1])] && len(parts) > 2 {
		last = parts[len(parts)-2] + " " + parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-2], " ")
	} else {
		last = parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-1], " ")
	}
	return reference.Creator{
		CreatorType: creatorType,
		FirstName:   stripBraces(first),
		LastName:    stripBraces(last),
	}
}

func cslCreator(n map[string]any, creatorType string) (reference.Creator, bool) {
	if lit := strings.TrimSpace(reference.ValueString(n["literal"])); lit != "" {
		return reference.Creator{CreatorType: creatorType, Name: lit}, true
	}
	family := cslFamily(n)
	given := strings.TrimSpace(reference.ValueString(n["given"]))
	if suffix := strings.TrimSpace(reference.ValueString(n["suffix"])); suffix != "" && family != "" {
		family = family + " " + suffix
	}
	switch {
	case family != "":
		return reference.Creator{CreatorType: creatorType, LastName: family, FirstName: given}, true
	case given != "":
		return reference.Creator{CreatorType: creatorType, Name: given}, true
	}
	return reference.Creator{}, false
}

// isBraceWrapped reports whether the whole name is a single {...} group.
func isBraceWrapped(s string) bool {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func stripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}
