package note

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/adrg/frontmatter"

	"github.com/matsen/bibnow/internal/citekey"
	"github.com/matsen/bibnow/internal/reference"
)

func sampleRecord() reference.DestinationRecord {
	dest := reference.NewDestinationRecord("journalArticle")
	dest.Fields["title"] = "A Study of Bees"
	dest.Fields["date"] = "2020"
	dest.Fields["callNumber"] = "QL568"
	dest.Creators = []reference.Creator{
		{CreatorType: "author", FirstName: "Jane", LastName: "Smith"},
		{CreatorType: "author", FirstName: "John", LastName: "Doe"},
	}
	dest.Tags = []reference.Tag{{Tag: "bees"}, {Tag: "honey"}}
	dest.Extra = "PMID: 1"
	return dest
}

func TestBuilder_Render(t *testing.T) {
	b, err := NewBuilder("",
		WithItemURL(func(key string) string { return "https://www.zotero.org/users/me/items/" + key }),
		WithCitation(func(key string) string { return "Smith, J. (2020). A study of bees.\n" }),
	)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	dest := sampleRecord()
	keys := citekey.DefaultDeriver().FromRecord(dest)

	md, err := b.Render(dest, keys, "ABCD1234")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(md, "---\n") {
		t.Errorf("note does not start with front matter:\n%s", md)
	}

	var fm FrontMatter
	body, err := frontmatter.Parse(strings.NewReader(md), &fm)
	if err != nil {
		t.Fatalf("frontmatter.Parse() error = %v", err)
	}
	wantFM := FrontMatter{
		Citekey:   "Smith2020AStudyOfBees",
		Aliases:   []string{"A Study Of Bees"},
		Type:      "journalArticle",
		ZoteroKey: "ABCD1234",
		ZoteroURL: "https://www.zotero.org/users/me/items/ABCD1234",
		Year:      "2020",
		Tags:      []string{"bees", "honey"},
	}
	if !reflect.DeepEqual(fm, wantFM) {
		t.Errorf("front matter = %+v, want %+v", fm, wantFM)
	}

	for _, want := range []string{
		"# A Study of Bees",
		"**Responsible party:** Jane Smith, John Doe",
		"**Call number:** QL568",
		"**Zotero:** [ABCD1234](https://www.zotero.org/users/me/items/ABCD1234)",
		"Jane Smith, John Doe. 2020. A Study of Bees.",
		"Smith, J. (2020). A study of bees.",
		"[[bees]], [[honey]]",
		"PMID: 1",
		"None supplied.",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestBuilder_RenderWithoutRemoteKey(t *testing.T) {
	called := false
	b, err := NewBuilder("", WithCitation(func(string) string {
		called = true
		return "x"
	}))
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	dest := sampleRecord()
	md, err := b.Render(dest, citekey.DefaultDeriver().FromRecord(dest), "")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(md, "zotero_key") || strings.Contains(md, "**Zotero:**") {
		t.Errorf("note mentions a remote key:\n%s", md)
	}
	if called {
		t.Error("citation fetched without a remote key")
	}
}

func TestBuilder_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	if err := os.WriteFile(path, []byte("{{.Citekey}} | {{.TitleShort}} | {{.Type}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := NewBuilder(path)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	dest := sampleRecord()
	md, err := b.Render(dest, citekey.DefaultDeriver().FromRecord(dest), "")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasSuffix(md, "Smith2020AStudyOfBees | A Study Of Bees | journalArticle\n") {
		t.Errorf("Render() = %q", md)
	}
}

func TestNewBuilder_Errors(t *testing.T) {
	if _, err := NewBuilder(filepath.Join(t.TempDir(), "missing.tmpl")); err == nil {
		t.Error("NewBuilder() expected error for missing template")
	}

	path := filepath.Join(t.TempDir(), "bad.tmpl")
	if err := os.WriteFile(path, []byte("{{.Citekey"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBuilder(path); err == nil {
		t.Error("NewBuilder() expected error for malformed template")
	}
}

func TestResponsibleParty(t *testing.T) {
	dest := reference.NewDestinationRecord("case")
	dest.Fields["court"] = "Supreme Court"
	if got := ResponsibleParty(dest); got != "Supreme Court" {
		t.Errorf("ResponsibleParty() = %q, want Supreme Court", got)
	}

	dest.Creators = []reference.Creator{{CreatorType: "author", Name: "Ninth Circuit"}}
	if got := ResponsibleParty(dest); got != "Ninth Circuit" {
		t.Errorf("ResponsibleParty() = %q, want Ninth Circuit", got)
	}
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault", "notes")
	w := NewWriter(dir)

	path, err := w.Write("# Note\n", "LN Smith 2020 Bees.md")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "LN Smith 2020 Bees.md") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "# Note\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriter_RejectsSeparators(t *testing.T) {
	w := NewWriter(t.TempDir())
	for _, name := range []string{"../escape.md", `a\b.md`, "sub/note.md", "", ".."} {
		t.Run(name, func(t *testing.T) {
			if _, err := w.Write("x", name); !errors.Is(err, ErrInvalidFilename) {
				t.Errorf("Write(%q) error = %v, want ErrInvalidFilename", name, err)
			}
		})
	}
}

func TestScanVault(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.md":           "---\ncitekey: Smith2020Bees\nzotero_key: ABC\n---\n\nbody\n",
		"sub/b.md":       "---\ncitekey: Doe1999Wasps\n---\n",
		"plain.md":       "no front matter here\n",
		"other.txt":      "---\ncitekey: Ignored2000\n---\n",
		".obsidian/c.md": "---\ncitekey: Hidden2001\n---\n",
		"broken.md":      "---\ncitekey: [unterminated\n---\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := ScanVault(dir)
	if err != nil {
		t.Fatalf("ScanVault() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}

	e, ok := idx.Lookup("Smith2020Bees")
	if !ok {
		t.Fatal("Smith2020Bees not indexed")
	}
	if e.ZoteroKey != "ABC" || e.Path != filepath.Join(dir, "a.md") {
		t.Errorf("entry = %+v", e)
	}
	if !idx.Has("Doe1999Wasps") {
		t.Error("Doe1999Wasps not indexed")
	}
	for _, key := range []string{"Ignored2000", "Hidden2001"} {
		if idx.Has(key) {
			t.Errorf("%s should not be indexed", key)
		}
	}
}

func TestScanVault_Missing(t *testing.T) {
	idx, err := ScanVault(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ScanVault() error = %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}
