package importer

import (
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

var thesisGenres = map[string]string{
	"phdthesis":     "PhD thesis",
	"mastersthesis": "Master's thesis",
}

// Normalize fills in fields that BibTeX dialects express through the entry
// type or alternative field names. The input record is not modified.
func Normalize(rec reference.SourceRecord) reference.SourceRecord {
	out := rec.Clone()

	if out.EntryType() == reference.Thesis {
		if !out.Has("school") && out.Has("institution") {
			out.Set("school", out.Fields["institution"])
		}
		if genre, ok := thesisGenres[strings.ToLower(out.Type)]; ok && !out.Has("genre") {
			out.Set("genre", genre)
		}
	}

	return out
}
