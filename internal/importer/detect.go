// Package importer parses BibTeX and CSL-JSON input into source records.
package importer

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

// Format is an input format recognised by Detect.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatBibTeX  Format = "bibtex"
	FormatCSL     Format = "csl-json"
)

// ErrUnknownFormat is returned by Parse when the input is neither BibTeX nor
// CSL-JSON.
var ErrUnknownFormat = errors.New("input is neither BibTeX nor CSL-JSON")

var (
	bibEntryRegex = regexp.MustCompile(`@[A-Za-z]+\s*[{(]`)
	blockRegex    = regexp.MustCompile(`(?is)@bibtex\b(.*?)@end\b`)
	openRegex     = regexp.MustCompile(`(?is)@bibtex\b(.*)`)
)

// Detect guesses the format of text.
func Detect(text string) Format {
	t := strings.TrimSpace(text)
	if t == "" {
		return FormatUnknown
	}
	if (t[0] == '{' || t[0] == '[') && json.Valid([]byte(t)) {
		return FormatCSL
	}
	if bibEntryRegex.MatchString(t) {
		return FormatBibTeX
	}
	return FormatUnknown
}

// ExtractBlock returns the text between an "@bibtex" marker and "@end".
// Text without the marker is returned unchanged; a missing "@end" takes
// everything after the marker.
func ExtractBlock(text string) string {
	if m := blockRegex.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := openRegex.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// Parse extracts the @bibtex block if present, detects the format and returns
// normalized records plus any per-block errors.
func Parse(text string) ([]reference.SourceRecord, []error) {
	text = ExtractBlock(text)

	var records []reference.SourceRecord
	var errs []error

	switch Detect(text) {
	case FormatCSL:
		recs, err := ParseCSL([]byte(text))
		if err != nil {
			return nil, []error{err}
		}
		records = recs
	case FormatBibTeX:
		records, errs = ParseBibTeX(text)
	default:
		return nil, []error{ErrUnknownFormat}
	}

	for i := range records {
		records[i] = Normalize(records[i])
	}
	return records, errs
}
