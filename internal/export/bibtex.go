// Package export mirrors mapped records into a BibTeX library file.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/bibnow/internal/citekey"
	"github.com/matsen/bibnow/internal/reference"
)

// entryTypes maps item types to BibTeX entry types. Anything else is misc.
var entryTypes = map[string]string{
	"journalArticle":   "article",
	"magazineArticle":  "article",
	"newspaperArticle": "article",
	"book":             "book",
	"bookSection":      "incollection",
	"conferencePaper":  "inproceedings",
	"thesis":           "phdthesis",
	"report":           "techreport",
	"manuscript":       "unpublished",
	"webpage":          "online",
	"dataset":          "dataset",
	"computerProgram":  "software",
	"case":             "jurisdiction",
	"statute":          "legislation",
	"bill":             "legislation",
	"patent":           "patent",
}

// bibFields lists output fields in order with the item fields that feed
// them. The first non-empty item field wins.
var bibFields = []struct {
	name    string
	sources []string
}{
	{"title", []string{"title", "caseName", "nameOfAct", "subject"}},
	{"shorttitle", []string{"shortTitle"}},
	{"journal", []string{"publicationTitle"}},
	{"booktitle", []string{"bookTitle", "proceedingsTitle"}},
	{"eventtitle", []string{"conferenceName", "meetingName"}},
	{"series", []string{"series"}},
	{"edition", []string{"edition"}},
	{"volume", []string{"volume", "codeVolume", "reporterVolume"}},
	{"number", []string{"issue", "number", "billNumber", "docketNumber", "reportNumber", "publicLawNumber", "documentNumber"}},
	{"pages", []string{"pages", "firstPage", "codePages"}},
	{"publisher", []string{"publisher", "label", "studio", "network", "distributor", "repository"}},
	{"school", []string{"university"}},
	{"institution", []string{"institution", "court", "legislativeBody"}},
	{"address", []string{"place"}},
	{"type", []string{"thesisType", "reportType", "genre"}},
	{"doi", []string{"DOI"}},
	{"url", []string{"url"}},
	{"urldate", []string{"accessDate"}},
	{"isbn", []string{"ISBN"}},
	{"issn", []string{"ISSN"}},
	{"language", []string{"language"}},
	{"abstract", []string{"abstractNote"}},
}

var (
	isoMonthRegex = regexp.MustCompile(`^\d{4}-(\d{2})`)
	extraDOIRegex = regexp.MustCompile(`(?i)^doi:\s*(\S+)\s*$`)
)

var monthMacros = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// EntryType returns the BibTeX entry type for an item.
func EntryType(dest reference.DestinationRecord) string {
	if dest.ItemType == "thesis" && strings.Contains(strings.ToLower(dest.Get("thesisType")), "master") {
		return "mastersthesis"
	}
	if t, ok := entryTypes[dest.ItemType]; ok {
		return t
	}
	return "misc"
}

// ToBibTeX renders an item as a BibTeX entry under the given citation key.
func ToBibTeX(dest reference.DestinationRecord, key string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", EntryType(dest), key))

	if authors := formatCreators(dest.Creators, func(role string) bool { return role != reference.CreatorEditor }); authors != "" {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", authors))
	}
	if editors := formatCreators(dest.Creators, func(role string) bool { return role == reference.CreatorEditor }); editors != "" {
		b.WriteString(fmt.Sprintf("  editor = {%s},\n", editors))
	}

	date := firstOf(dest, "date", "dateDecided", "dateEnacted")
	if year := citekey.ExtractYear(date); year != citekey.UnknownYear {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	}
	if m := isoMonthRegex.FindStringSubmatch(date); m != nil {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n >= 1 && n <= 12 {
			b.WriteString(fmt.Sprintf("  month = %s,\n", monthMacros[n-1]))
		}
	}

	note, extraDOI := splitExtra(dest.Extra)
	for _, f := range bibFields {
		v := firstOf(dest, f.sources...)
		if f.name == "doi" && v == "" {
			v = extraDOI
		}
		if v == "" {
			continue
		}
		if f.name != "doi" && f.name != "url" {
			v = escapeLatex(v)
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.name, v))
	}

	if len(dest.Tags) > 0 {
		tags := make([]string, len(dest.Tags))
		for i, t := range dest.Tags {
			tags[i] = escapeLatex(t.Tag)
		}
		b.WriteString(fmt.Sprintf("  keywords = {%s},\n", strings.Join(tags, ", ")))
	}
	if note != "" {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(note)))
	}

	b.WriteString("}\n")
	return b.String()
}

// DOI returns the item's DOI field, or the DOI recorded in extra.
func DOI(dest reference.DestinationRecord) string {
	if doi := dest.Get("DOI"); doi != "" {
		return doi
	}
	_, doi := splitExtra(dest.Extra)
	return doi
}

func firstOf(dest reference.DestinationRecord, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(dest.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

// splitExtra separates a "DOI: ..." line from the rest of extra.
func splitExtra(extra string) (note, doi string) {
	var kept []string
	for _, line := range strings.Split(extra, "\n") {
		if m := extraDOIRegex.FindStringSubmatch(strings.TrimSpace(line)); m != nil && doi == "" {
			doi = m[1]
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), doi
}

// formatCreators formats names as "Last, First and Last, First". Corporate
// names are braced so BibTeX keeps them whole.
func formatCreators(creators []reference.Creator, match func(role string) bool) string {
	var formatted []string
	for _, c := range creators {
		if !match(c.CreatorType) {
			continue
		}
		switch {
		case c.IsLiteral():
			formatted = append(formatted, "{"+escapeLatex(c.Name)+"}")
		case c.FirstName != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(c.LastName), escapeLatex(c.FirstName)))
		case c.LastName != "":
			formatted = append(formatted, escapeLatex(c.LastName))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
