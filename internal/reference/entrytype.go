package reference

import "strings"

// EntryType is the normalized kind of a bibliographic record.
type EntryType string

// Entry types understood by the mapper.
const (
	Article         EntryType = "article"
	Book            EntryType = "book"
	BookSection     EntryType = "bookSection"
	ConferencePaper EntryType = "conferencePaper"
	Thesis          EntryType = "thesis"
	Report          EntryType = "report"
	Webpage         EntryType = "webpage"
	Case            EntryType = "case"
	Bill            EntryType = "bill"
	Hearing         EntryType = "hearing"
	Presentation    EntryType = "presentation"
	Manuscript      EntryType = "manuscript"
	Dataset         EntryType = "dataset"
	Document        EntryType = "document"

	MagazineArticle     EntryType = "magazineArticle"
	NewspaperArticle    EntryType = "newspaperArticle"
	DictionaryEntry     EntryType = "dictionaryEntry"
	EncyclopediaArticle EntryType = "encyclopediaArticle"
	Interview           EntryType = "interview"
	AudioRecording      EntryType = "audioRecording"
	VideoRecording      EntryType = "videoRecording"
	Statute             EntryType = "statute"
)

// AllEntryTypes lists every known entry type.
var AllEntryTypes = []EntryType{
	Article, Book, BookSection, ConferencePaper, Thesis, Report, Webpage,
	Case, Bill, Hearing, Presentation, Manuscript, Dataset, Document,
	MagazineArticle, NewspaperArticle, DictionaryEntry, EncyclopediaArticle,
	Interview, AudioRecording, VideoRecording, Statute,
}

// entryTypeAliases maps lower-cased BibTeX, BibLaTeX, CSL and Zotero type
// names to entry types.
var entryTypeAliases = map[string]EntryType{
	// BibTeX / BibLaTeX
	"article":       Article,
	"book":          Book,
	"booklet":       Book,
	"mvbook":        Book,
	"inbook":        BookSection,
	"incollection":  BookSection,
	"inproceedings": ConferencePaper,
	"conference":    ConferencePaper,
	"proceedings":   Book,
	"phdthesis":     Thesis,
	"mastersthesis": Thesis,
	"thesis":        Thesis,
	"techreport":    Report,
	"report":        Report,
	"online":        Webpage,
	"electronic":    Webpage,
	"www":           Webpage,
	"webpage":       Webpage,
	"unpublished":   Manuscript,
	"manuscript":    Manuscript,
	"misc":          Document,
	"manual":        Document,
	"jurisdiction":  Case,
	"legislation":   Statute,
	"dataset":       Dataset,
	"data":          Dataset,
	"audio":         AudioRecording,
	"video":         VideoRecording,

	// CSL
	"article-journal":    Article,
	"article-magazine":   MagazineArticle,
	"article-newspaper":  NewspaperArticle,
	"chapter":            BookSection,
	"paper-conference":   ConferencePaper,
	"post-weblog":        Webpage,
	"post":               Webpage,
	"legal_case":         Case,
	"bill":               Bill,
	"hearing":            Hearing,
	"speech":             Presentation,
	"entry-dictionary":   DictionaryEntry,
	"entry-encyclopedia": EncyclopediaArticle,
	"interview":          Interview,
	"song":               AudioRecording,
	"motion_picture":     VideoRecording,
	"broadcast":          VideoRecording,
	"document":           Document,

	// Zotero item types (lower-cased)
	"journalarticle":      Article,
	"booksection":         BookSection,
	"conferencepaper":     ConferencePaper,
	"case":                Case,
	"presentation":        Presentation,
	"magazinearticle":     MagazineArticle,
	"newspaperarticle":    NewspaperArticle,
	"dictionaryentry":     DictionaryEntry,
	"encyclopediaarticle": EncyclopediaArticle,
	"audiorecording":      AudioRecording,
	"videorecording":      VideoRecording,
	"statute":             Statute,
}

// ParseEntryType resolves a raw type name. Unknown or empty names fall back
// to Document.
func ParseEntryType(raw string) EntryType {
	if t, ok := entryTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return Document
}

// IsKnownEntryType reports whether raw names a recognised type.
func IsKnownEntryType(raw string) bool {
	_, ok := entryTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ItemType returns the destination item type name.
func (t EntryType) ItemType() string {
	if t == Article {
		return "journalArticle"
	}
	if t == "" {
		return string(Document)
	}
	return string(t)
}

func (t EntryType) String() string {
	return string(t)
}
