package pdf

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "doi: 10.1234/bees.2020.001 Received", "10.1234/bees.2020.001"},
		{"url", "https://doi.org/10.1038/s41586-020-2649-2.", "10.1038/s41586-020-2649-2"},
		{"trailing paren", "(see 10.1101/2020.01.01.123456)", "10.1101/2020.01.01.123456"},
		{"balanced parens kept", "doi 10.1002/(SICI)1097-4571(199806)49:8", "10.1002/(SICI)1097-4571(199806)49:8"},
		{"quoted", `href="10.5555/12345678"`, "10.5555/12345678"},
		{"first of several", "10.1111/aaaa 10.2222/bbbb", "10.1111/aaaa"},
		{"empty suffix skipped", "10.1234/. then 10.5678/ok", "10.5678/ok"},
		{"too short registrant", "10.12/abc", ""},
		{"none", "no identifiers here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindDOI(tt.text); got != tt.want {
				t.Errorf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatch_Found(t *testing.T) {
	if (Match{}).Found() {
		t.Error("zero Match reports Found")
	}
	if !(Match{DOI: "10.1234/x", Page: 1}).Found() {
		t.Error("Match with DOI reports not Found")
	}
}

func TestFind_MissingFile(t *testing.T) {
	if _, err := Find(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Find() expected error for a missing file")
	}
}

func TestFindReader_NotAPDF(t *testing.T) {
	data := []byte("@article{k, title = {T}}")
	if _, err := FindReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("FindReader() expected error for non-PDF input")
	}
}
