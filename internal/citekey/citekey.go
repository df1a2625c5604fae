// Package citekey derives citation keys and note filenames.
package citekey

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibnow/internal/party"
	"github.com/matsen/bibnow/internal/reference"
)

// UnknownYear marks a record without a recognisable year.
const UnknownYear = "XXXX"

var (
	yearRegex = regexp.MustCompile(`[0-9]{4}`)
	wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// ExtractYear returns the first four-digit run found in values, checked in
// order, or UnknownYear.
func ExtractYear(values ...string) string {
	for _, v := range values {
		if y := yearRegex.FindString(v); y != "" {
			return y
		}
	}
	return UnknownYear
}

// TitleWords returns the first n words of title, each capitalised.
func TitleWords(title string, n int) []string {
	words := wordRegex.FindAllString(title, -1)
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return words
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// CiteKey joins last name, year and the first four title words.
func CiteKey(lastname, year, title string) string {
	return lastname + year + strings.Join(TitleWords(title, 4), "")
}

// Deriver builds filenames.
type Deriver struct {
	Prefix         string
	UseEtAl        bool
	TitleWordLimit int
}

// DefaultDeriver returns the deriver used when nothing is configured.
func DefaultDeriver() Deriver {
	return Deriver{Prefix: "LN ", UseEtAl: true, TitleWordLimit: 4}
}

// Filename returns "<prefix><lastname>[ et al] <year> <title words>.md".
func (d Deriver) Filename(lastname, year, title string, multiple bool) string {
	var b strings.Builder
	b.WriteString(d.Prefix)
	b.WriteString(lastname)
	if d.UseEtAl && multiple {
		b.WriteString(" et al")
	}
	b.WriteString(" ")
	b.WriteString(year)
	if words := TitleWords(title, d.TitleWordLimit); len(words) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(words, " "))
	}
	b.WriteString(".md")
	return b.String()
}

// Keys are the identifiers derived for one record.
type Keys struct {
	CiteKey    string `json:"citekey"`
	Filename   string `json:"filename"`
	Year       string `json:"year"`
	LastName   string `json:"last_name"`
	TitleShort string `json:"title_short"`
	Multiple   bool   `json:"multiple"`
}

// FromRecord derives keys from a mapped record alone.
func (d Deriver) FromRecord(dest reference.DestinationRecord) Keys {
	lastname := party.UnknownLastname
	if len(dest.Creators) > 0 {
		lastname = creatorLastName(dest.Creators[0])
	} else if court := dest.Get("court"); court != "" {
		lastname = party.LastName(court)
	}
	year := ExtractYear(dest.Get("date"), dest.Get("dateDecided"), dest.Get("dateEnacted"))
	return d.keys(lastname, year, titleOf(dest, ""), len(dest.Creators) > 1)
}

// FromSource derives keys from a source record and its mapped form. The
// responsible party comes from the source record.
func (d Deriver) FromSource(src reference.SourceRecord, dest reference.DestinationRecord) Keys {
	p := src.Party
	if p == nil {
		resolved := party.Resolve(src)
		p = &resolved
	}
	year := ExtractYear(
		dest.Get("date"), dest.Get("dateDecided"), dest.Get("dateEnacted"),
		src.String("issued"), src.String("date"), src.String("year"),
	)
	return d.keys(p.FirstLastname, year, titleOf(dest, src.String("title")), p.Multiple)
}

func (d Deriver) keys(lastname, year, title string, multiple bool) Keys {
	return Keys{
		CiteKey:    CiteKey(lastname, year, title),
		Filename:   d.Filename(lastname, year, title, multiple),
		Year:       year,
		LastName:   lastname,
		TitleShort: strings.Join(TitleWords(title, d.TitleWordLimit), " "),
		Multiple:   multiple,
	}
}

func creatorLastName(c reference.Creator) string {
	if c.IsLiteral() {
		return party.LastName(c.Name)
	}
	return party.LastName(c.LastName + ",")
}

func titleOf(dest reference.DestinationRecord, fallback string) string {
	if t := dest.Title(); t != "" {
		return t
	}
	return fallback
}
