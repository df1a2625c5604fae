package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matsen/bibnow/internal/reference"
)

var (
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	Keys map[string]bool
	// DOIs maps normalized DOIs to citation keys.
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether an entry exists, matching by DOI first and
// citation key second.
func (idx *BibTeXIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[normalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// Add records an entry in the index.
func (idx *BibTeXIndex) Add(key, doi string) {
	idx.Keys[key] = true
	if d := normalizeDOI(doi); d != "" {
		idx.DOIs[d] = key
	}
}

// ParseBibTeXFile builds an index from an existing .bib file. A missing file
// yields an empty index.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			doi := normalizeDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeDOI strips resolver prefixes and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// AppendToBibFile appends BibTeX content to a file, creating it and its
// directory when missing.
func AppendToBibFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating bib directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString("\n" + content)
	return err
}

// Mirror appends newly processed items to a .bib file, skipping entries the
// file already holds.
type Mirror struct {
	path  string
	index *BibTeXIndex
}

// NewMirror returns a mirror for the .bib file at path.
func NewMirror(path string) *Mirror {
	return &Mirror{path: path}
}

// Path returns the mirrored file.
func (m *Mirror) Path() string {
	return m.path
}

// Add appends the item under key unless its DOI or key is already present.
// It reports whether the file was written.
func (m *Mirror) Add(dest reference.DestinationRecord, key string) (bool, error) {
	if m.index == nil {
		idx, err := ParseBibTeXFile(m.path)
		if err != nil {
			return false, fmt.Errorf("indexing %s: %w", m.path, err)
		}
		m.index = idx
	}

	doi := DOI(dest)
	if m.index.HasEntry(key, doi) {
		return false, nil
	}
	if err := AppendToBibFile(m.path, ToBibTeX(dest, key)); err != nil {
		return false, fmt.Errorf("appending to %s: %w", m.path, err)
	}
	m.index.Add(key, doi)
	return true, nil
}
