package mapper

import (
	"strconv"
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

// transform handles one mapping concern. apply writes destination fields and
// returns the source fields it consumed; consumed fields never overflow.
type transform struct {
	name  string
	apply func(src reference.SourceRecord, d *draft) []string
}

// pick returns the first non-empty value among names, claiming every name
// that carries the same value.
func pick(src reference.SourceRecord, names ...string) (string, []string) {
	value := src.First(names...)
	if value == "" {
		return "", nil
	}
	var claimed []string
	for _, n := range names {
		if src.String(n) == value {
			claimed = append(claimed, n)
		}
	}
	return value, claimed
}

// alias copies the first present source field to target when the item type
// accepts target.
func alias(target string, names ...string) transform {
	return transform{
		name: target,
		apply: func(src reference.SourceRecord, d *draft) []string {
			if !d.allows(target) {
				return nil
			}
			v, claimed := pick(src, names...)
			d.set(target, v)
			return claimed
		},
	}
}

var titleTransform = transform{
	name: "title",
	apply: func(src reference.SourceRecord, d *draft) []string {
		d.set("title", src.String("title"))
		return []string{"title"}
	},
}

// dateTransform prefers issued.raw, then issued date-parts, then date, then
// year with an optional month. Types without a date field rename it in their
// structural override.
var dateTransform = transform{
	name: "date",
	apply: func(src reference.SourceRecord, d *draft) []string {
		d.set("date", sourceDate(src))
		return []string{"issued", "date", "year", "month"}
	},
}

var accessedTransform = transform{
	name: "accessDate",
	apply: func(src reference.SourceRecord, d *draft) []string {
		if !d.allows("accessDate") {
			return nil
		}
		if raw := reference.RawDate(src.Fields["accessed"]); raw != "" {
			d.set("accessDate", raw)
			return []string{"accessed"}
		}
		v, claimed := pick(src, "urldate")
		d.set("accessDate", v)
		return claimed
	},
}

var keywordsTransform = transform{
	name: "tags",
	apply: func(src reference.SourceRecord, d *draft) []string {
		v, claimed := pick(src, "keywords", "keyword")
		seen := make(map[string]bool)
		for _, kw := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }) {
			kw = strings.TrimSpace(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			d.tags = append(d.tags, reference.Tag{Tag: kw})
		}
		return claimed
	},
}

var notesTransform = transform{
	name: "extra",
	apply: func(src reference.SourceRecord, d *draft) []string {
		var claimed []string
		for _, name := range []string{"note", "annote", "extra"} {
			if src.Has(name) {
				d.note(src.String(name))
				claimed = append(claimed, name)
			}
		}
		return claimed
	},
}

// containerTargets gives the destination field for container-title per item
// type.
var containerTargets = map[string]string{
	"journalArticle":      "publicationTitle",
	"magazineArticle":     "publicationTitle",
	"newspaperArticle":    "publicationTitle",
	"bookSection":         "bookTitle",
	"conferencePaper":     "proceedingsTitle",
	"dictionaryEntry":     "dictionaryTitle",
	"encyclopediaArticle": "encyclopediaTitle",
	"webpage":             "websiteTitle",
}

// containerTransform applies the precedence container-title > journal >
// booktitle. Only the winning field is consumed.
var containerTransform = transform{
	name: "container-title",
	apply: func(src reference.SourceRecord, d *draft) []string {
		target, ok := containerTargets[d.itemType]
		if !ok {
			return nil
		}
		for _, name := range []string{"container-title", "journal", "journaltitle", "booktitle"} {
			if v := src.String(name); v != "" {
				d.set(target, v)
				return []string{name}
			}
		}
		return nil
	},
}

type sourcedTarget struct {
	target string
	names  []string
}

// publisherTargets routes publisher-like fields per item type. Types not
// listed use publisher when their whitelist has it.
var publisherTargets = map[string]sourcedTarget{
	"thesis":         {"university", []string{"publisher", "school", "institution"}},
	"report":         {"institution", []string{"publisher", "institution"}},
	"dataset":        {"repository", []string{"publisher"}},
	"audioRecording": {"label", []string{"publisher", "label"}},
	"videoRecording": {"studio", []string{"publisher", "studio"}},
}

var publisherTransform = transform{
	name: "publisher",
	apply: func(src reference.SourceRecord, d *draft) []string {
		st, ok := publisherTargets[d.itemType]
		if !ok {
			st = sourcedTarget{"publisher", []string{"publisher"}}
		}
		if !d.allows(st.target) {
			return nil
		}
		v, claimed := pick(src, st.names...)
		d.set(st.target, v)
		return claimed
	},
}

// genreTargets gives the type-specific field for genre. Elsewhere genre
// overflows as an extra line.
var genreTargets = map[string]string{
	"report":       "reportType",
	"thesis":       "thesisType",
	"presentation": "presentationType",
	"manuscript":   "manuscriptType",
	"webpage":      "websiteType",
}

var genreTransform = transform{
	name: "genre",
	apply: func(src reference.SourceRecord, d *draft) []string {
		target, ok := genreTargets[d.itemType]
		if !ok {
			return nil
		}
		v, claimed := pick(src, "genre")
		d.set(target, v)
		return claimed
	},
}

// numberTargets routes the BibTeX number field per item type.
var numberTargets = map[string]sourcedTarget{
	"journalArticle":  {"issue", []string{"issue", "number"}},
	"magazineArticle": {"issue", []string{"issue", "number"}},
	"report":          {"reportNumber", []string{"number", "report-number"}},
	"book":            {"seriesNumber", []string{"collection-number", "number"}},
	"bookSection":     {"seriesNumber", []string{"collection-number", "number"}},
	"dataset":         {"seriesNumber", []string{"collection-number"}},
}

var numberTransform = transform{
	name: "number",
	apply: func(src reference.SourceRecord, d *draft) []string {
		st, ok := numberTargets[d.itemType]
		if !ok {
			return nil
		}
		v, claimed := pick(src, st.names...)
		d.set(st.target, v)
		return claimed
	},
}

var eventTransform = transform{
	name: "event",
	apply: func(src reference.SourceRecord, d *draft) []string {
		if d.itemType != "conferencePaper" {
			return nil
		}
		v, claimed := pick(src, "event", "event-title", "eventtitle")
		d.set("conferenceName", v)
		return claimed
	},
}

// commonTransforms run for every item type, in order.
var commonTransforms = []transform{
	titleTransform,
	alias("shortTitle", "shortTitle", "title-short", "shorttitle"),
	containerTransform,
	alias("journalAbbreviation", "journalAbbreviation", "container-title-short", "shortjournal"),
	publisherTransform,
	alias("place", "place", "publisher-place", "address", "location"),
	genreTransform,
	eventTransform,
	dateTransform,
	alias("pages", "pages", "page"),
	alias("numPages", "numPages", "number-of-pages", "pagetotal"),
	accessedTransform,
	alias("url", "url", "URL"),
	alias("abstractNote", "abstractNote", "abstract"),
	alias("DOI", "DOI", "doi"),
	alias("ISBN", "ISBN", "isbn"),
	alias("ISSN", "ISSN", "issn"),
	numberTransform,
	alias("series", "series", "collection-title"),
	alias("numberOfVolumes", "numberOfVolumes", "number-of-volumes", "volumes"),
	alias("archiveLocation", "archiveLocation", "archive_location"),
	alias("callNumber", "callNumber", "call-number"),
	alias("language", "language", "langid"),
	alias("versionNumber", "versionNumber", "version"),
	alias("runningTime", "runningTime", "dimensions"),
	keywordsTransform,
	notesTransform,
}

// sourceDate computes the record date used by the date transform.
func sourceDate(src reference.SourceRecord) string {
	if v, ok := src.Get("issued"); ok {
		if s := strings.TrimSpace(reference.FormatDate(v)); s != "" {
			return s
		}
	}
	if s := src.String("date"); s != "" {
		return s
	}
	year := src.String("year")
	if year == "" {
		return ""
	}
	if m := monthNumber(src.String("month")); m != "" {
		return year + "-" + m
	}
	return year
}

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// monthNumber converts a month name, abbreviation or number to "01".."12".
func monthNumber(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return twoDigits(n)
		}
		return ""
	}
	for i, name := range monthNames {
		if strings.HasPrefix(s, name) {
			return twoDigits(i + 1)
		}
	}
	return ""
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
