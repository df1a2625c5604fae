// Package note renders and writes Markdown literature notes.
package note

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/matsen/bibnow/internal/citekey"
	"github.com/matsen/bibnow/internal/reference"
)

//go:embed templates/note.md.tmpl
var templates embed.FS

const noneSupplied = "None supplied."

// FrontMatter is the YAML header of a note.
type FrontMatter struct {
	Citekey   string   `yaml:"citekey"`
	Aliases   []string `yaml:"aliases"`
	Type      string   `yaml:"type"`
	ZoteroKey string   `yaml:"zotero_key,omitempty"`
	ZoteroURL string   `yaml:"zotero_url,omitempty"`
	Year      string   `yaml:"year"`
	Tags      []string `yaml:"tags,omitempty"`
}

// Data is what note templates see.
type Data struct {
	Citekey          string
	Type             string
	ZoteroKey        string
	ZoteroURL        string
	ResponsibleParty string
	Title            string
	TitleShort       string
	Year             string
	CallNumber       string
	BaselineCitation string
	Citation         string
	Abstract         string
	Keywords         string
	Extra            string
}

// Builder renders notes from mapped records.
type Builder struct {
	tmpl    *template.Template
	itemURL func(key string) string
	cite    func(key string) string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithItemURL sets the function that turns a remote key into a web URL.
func WithItemURL(fn func(key string) string) BuilderOption {
	return func(b *Builder) {
		b.itemURL = fn
	}
}

// WithCitation sets the function that fetches a formatted citation for a
// remote key. An empty result leaves the citation out.
func WithCitation(fn func(key string) string) BuilderOption {
	return func(b *Builder) {
		b.cite = fn
	}
}

// NewBuilder creates a builder. An empty templatePath uses the embedded
// default template.
func NewBuilder(templatePath string, opts ...BuilderOption) (*Builder, error) {
	var text []byte
	var err error
	if templatePath == "" {
		text, err = templates.ReadFile("templates/note.md.tmpl")
	} else {
		text, err = os.ReadFile(templatePath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading note template: %w", err)
	}

	tmpl, err := template.New("note").Option("missingkey=zero").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parsing note template: %w", err)
	}

	b := &Builder{tmpl: tmpl}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Render returns the note for a record: YAML front matter followed by the
// template body.
func (b *Builder) Render(dest reference.DestinationRecord, keys citekey.Keys, remoteKey string) (string, error) {
	data := b.data(dest, keys, remoteKey)

	fm := FrontMatter{
		Citekey:   data.Citekey,
		Aliases:   aliases(data),
		Type:      data.Type,
		ZoteroKey: data.ZoteroKey,
		ZoteroURL: data.ZoteroURL,
		Year:      data.Year,
		Tags:      tagNames(dest.Tags),
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var body bytes.Buffer
	if err := b.tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("rendering note: %w", err)
	}

	var out strings.Builder
	out.WriteString("---\n")
	out.Write(header)
	out.WriteString("---\n\n")
	out.Write(body.Bytes())
	return out.String(), nil
}

func (b *Builder) data(dest reference.DestinationRecord, keys citekey.Keys, remoteKey string) Data {
	responsible := ResponsibleParty(dest)
	title := dest.Title()
	if title == "" {
		title = "Untitled"
	}

	d := Data{
		Citekey:          keys.CiteKey,
		Type:             dest.ItemType,
		ZoteroKey:        remoteKey,
		ResponsibleParty: responsible,
		Title:            title,
		TitleShort:       keys.TitleShort,
		Year:             keys.Year,
		CallNumber:       dest.Get("callNumber"),
		BaselineCitation: fmt.Sprintf("%s. %s. %s.", responsible, keys.Year, title),
		Abstract:         orNone(dest.Get("abstractNote")),
		Keywords:         wikilinks(dest.Tags),
		Extra:            orNone(dest.Extra),
	}
	if remoteKey != "" {
		if b.itemURL != nil {
			d.ZoteroURL = b.itemURL(remoteKey)
		}
		if b.cite != nil {
			d.Citation = strings.TrimSpace(b.cite(remoteKey))
		}
	}
	return d
}

// ResponsibleParty lists the record's creators, or its court when it has
// none.
func ResponsibleParty(dest reference.DestinationRecord) string {
	if len(dest.Creators) == 0 {
		return dest.Get("court")
	}
	names := make([]string, 0, len(dest.Creators))
	for _, c := range dest.Creators {
		if n := c.Display(); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

func aliases(d Data) []string {
	if d.TitleShort == "" {
		return []string{}
	}
	return []string{d.TitleShort}
}

func tagNames(tags []reference.Tag) []string {
	var out []string
	for _, t := range tags {
		if t.Tag != "" {
			out = append(out, t.Tag)
		}
	}
	return out
}

func wikilinks(tags []reference.Tag) string {
	names := tagNames(tags)
	for i, n := range names {
		names[i] = "[[" + n + "]]"
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return noneSupplied
	}
	return s
}
