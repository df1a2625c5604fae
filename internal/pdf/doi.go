// Package pdf finds DOIs in PDF files.
package pdf

import (
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages is the number of leading pages searched for a DOI.
const MaxPages = 3

var doiStart = regexp.MustCompile(`\b10\.\d{4,9}/\S+`)

// Match is a DOI and the 1-based page it was printed on.
type Match struct {
	DOI  string `json:"doi"`
	Page int    `json:"page"`
}

// Found reports whether a DOI was found.
func (m Match) Found() bool { return m.DOI != "" }

// Find opens the PDF at path and returns the first DOI on its leading pages.
// A PDF without a DOI yields a zero Match and no error.
func Find(path string) (Match, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Match{}, err
	}
	defer f.Close()
	return search(r), nil
}

// FindReader is Find for an in-memory PDF.
func FindReader(ra io.ReaderAt, size int64) (Match, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return Match{}, err
	}
	return search(r), nil
}

func search(r *pdf.Reader) Match {
	last := min(MaxPages, r.NumPage())
	for n := 1; n <= last; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := FindDOI(text); doi != "" {
			return Match{DOI: doi, Page: n}
		}
	}
	return Match{}
}

// FindDOI returns the first DOI in text, or "".
func FindDOI(text string) string {
	for _, loc := range doiStart.FindAllStringIndex(text, -1) {
		if doi := trimDOI(text[loc[0]:loc[1]]); doi != "" {
			return doi
		}
	}
	return ""
}

// trimDOI cuts a candidate at characters that never appear in a printed DOI
// and drops trailing punctuation, keeping a closing parenthesis that has a
// matching opener inside the DOI.
func trimDOI(s string) string {
	if i := strings.IndexAny(s, "\"<>{}[]|\\^`"); i >= 0 {
		s = s[:i]
	}
	for s != "" {
		last := s[len(s)-1]
		if strings.IndexByte(".,;:'", last) >= 0 {
			s = s[:len(s)-1]
			continue
		}
		if last == ')' && strings.Count(s, "(") < strings.Count(s, ")") {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	slash := strings.IndexByte(s, '/')
	if slash < 0 || slash == len(s)-1 {
		return ""
	}
	return s
}
