package note

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
)

// IndexEntry is an existing note found in the vault.
type IndexEntry struct {
	Citekey   string `json:"citekey"`
	ZoteroKey string `json:"zotero_key,omitempty"`
	Path      string `json:"path"`
}

// Index maps citekeys to notes already in the vault.
type Index struct {
	entries map[string]IndexEntry
}

type indexMeta struct {
	Citekey   string `yaml:"citekey"`
	ZoteroKey string `yaml:"zotero_key"`
}

// ScanVault indexes the front matter of every Markdown note under dir.
// Hidden directories are skipped, as are notes without a citekey or with
// front matter that does not parse. A missing vault gives an empty index.
func ScanVault(dir string) (*Index, error) {
	idx := &Index{entries: make(map[string]IndexEntry)}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return idx, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var meta indexMeta
		if _, err := frontmatter.Parse(bytes.NewReader(data), &meta); err != nil {
			return nil
		}
		if meta.Citekey == "" {
			return nil
		}
		if _, dup := idx.entries[meta.Citekey]; !dup {
			idx.entries[meta.Citekey] = IndexEntry{
				Citekey:   meta.Citekey,
				ZoteroKey: meta.ZoteroKey,
				Path:      path,
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning vault: %w", err)
	}
	return idx, nil
}

// Lookup returns the note for a citekey.
func (i *Index) Lookup(citekey string) (IndexEntry, bool) {
	e, ok := i.entries[citekey]
	return e, ok
}

// Has reports whether a note with the citekey exists.
func (i *Index) Has(citekey string) bool {
	_, ok := i.entries[citekey]
	return ok
}

// Add records a note written during this run.
func (i *Index) Add(e IndexEntry) {
	i.entries[e.Citekey] = e
}

// Len returns the number of indexed notes.
func (i *Index) Len() int {
	return len(i.entries)
}
