package mapper

import "sort"

// whitelists lists the fields each Zotero item type accepts, excluding
// itemType, creators, tags and extra.
var whitelists = map[string][]string{
	"journalArticle": {
		"title", "abstractNote", "publicationTitle", "volume", "issue", "pages", "date",
		"series", "seriesTitle", "seriesText", "journalAbbreviation", "language", "DOI",
		"ISSN", "shortTitle", "url", "accessDate", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"book": {
		"title", "abstractNote", "series", "seriesNumber", "volume", "numberOfVolumes",
		"edition", "place", "publisher", "date", "numPages", "language", "ISBN",
		"shortTitle", "url", "accessDate", "archive", "archiveLocation", "libraryCatalog",
		"callNumber", "rights",
	},
	"bookSection": {
		"title", "abstractNote", "bookTitle", "series", "seriesNumber", "volume",
		"numberOfVolumes", "edition", "place", "publisher", "date", "pages", "language",
		"ISBN", "shortTitle", "url", "accessDate", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"conferencePaper": {
		"title", "abstractNote", "date", "proceedingsTitle", "conferenceName", "place",
		"publisher", "volume", "pages", "series", "language", "DOI", "ISBN", "shortTitle",
		"url", "accessDate", "archive", "archiveLocation", "libraryCatalog", "callNumber",
		"rights",
	},
	"thesis": {
		"title", "abstractNote", "thesisType", "university", "place", "date", "numPages",
		"language", "shortTitle", "url", "accessDate", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"report": {
		"title", "abstractNote", "reportNumber", "reportType", "seriesTitle", "place",
		"institution", "date", "pages", "language", "shortTitle", "url", "accessDate",
		"archive", "archiveLocation", "libraryCatalog", "callNumber", "rights",
	},
	"webpage": {
		"title", "abstractNote", "websiteTitle", "websiteType", "date", "shortTitle", "url",
		"accessDate", "language", "rights",
	},
	"case": {
		"caseName", "abstractNote", "reporter", "reporterVolume", "court", "docketNumber",
		"firstPage", "history", "dateDecided", "language", "shortTitle", "url", "accessDate",
		"rights",
	},
	"bill": {
		"title", "abstractNote", "billNumber", "code", "codeVolume", "section", "codePages",
		"legislativeBody", "session", "history", "date", "language", "url", "accessDate",
		"shortTitle", "rights",
	},
	"hearing": {
		"title", "abstractNote", "committee", "place", "publisher", "numberOfVolumes",
		"documentNumber", "pages", "legislativeBody", "session", "history", "date",
		"language", "shortTitle", "url", "accessDate", "rights",
	},
	"presentation": {
		"title", "abstractNote", "presentationType", "date", "place", "meetingName", "url",
		"accessDate", "language", "shortTitle", "rights",
	},
	"manuscript": {
		"title", "abstractNote", "manuscriptType", "place", "date", "numPages", "language",
		"shortTitle", "url", "accessDate", "archive", "archiveLocation", "libraryCatalog",
		"callNumber", "rights",
	},
	"dataset": {
		"title", "abstractNote", "identifier", "versionNumber", "date", "repository",
		"repositoryLocation", "format", "size", "series", "seriesNumber", "DOI", "url",
		"accessDate", "archive", "archiveLocation", "shortTitle", "language",
		"libraryCatalog", "callNumber", "rights",
	},
	"document": {
		"title", "abstractNote", "publisher", "date", "language", "shortTitle", "url",
		"accessDate", "archive", "archiveLocation", "libraryCatalog", "callNumber", "rights",
	},
	"magazineArticle": {
		"title", "abstractNote", "publicationTitle", "volume", "issue", "date", "pages",
		"language", "ISSN", "shortTitle", "url", "accessDate", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"newspaperArticle": {
		"title", "abstractNote", "publicationTitle", "place", "edition", "date", "section",
		"pages", "language", "shortTitle", "ISSN", "url", "accessDate", "archive",
		"archiveLocation", "libraryCatalog", "callNumber", "rights",
	},
	"dictionaryEntry": {
		"title", "abstractNote", "dictionaryTitle", "series", "seriesNumber", "volume",
		"numberOfVolumes", "edition", "place", "publisher", "date", "pages", "language",
		"ISBN", "shortTitle", "url", "accessDate", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"encyclopediaArticle": {
		"title", "abstractNote", "encyclopediaTitle", "series", "seriesNumber", "volume",
		"numberOfVolumes", "edition", "place", "publisher", "date", "pages", "ISBN",
		"shortTitle", "url", "accessDate", "language", "archive", "archiveLocation",
		"libraryCatalog", "callNumber", "rights",
	},
	"interview": {
		"title", "abstractNote", "date", "interviewMedium", "language", "shortTitle", "url",
		"accessDate", "archive", "archiveLocation", "libraryCatalog", "callNumber", "rights",
	},
	"audioRecording": {
		"title", "abstractNote", "audioRecordingFormat", "seriesTitle", "volume",
		"numberOfVolumes", "place", "label", "date", "runningTime", "language", "ISBN",
		"shortTitle", "archive", "archiveLocation", "libraryCatalog", "callNumber", "url",
		"accessDate", "rights",
	},
	"videoRecording": {
		"title", "abstractNote", "videoRecordingFormat", "seriesTitle", "volume",
		"numberOfVolumes", "place", "studio", "date", "runningTime", "language", "ISBN",
		"shortTitle", "url", "accessDate", "archive", "archiveLocation", "libraryCatalog",
		"callNumber", "rights",
	},
	"statute": {
		"nameOfAct", "abstractNote", "code", "codeNumber", "publicLawNumber", "dateEnacted",
		"pages", "section", "session", "history", "language", "shortTitle", "url",
		"accessDate", "rights",
	},
}

// allowed is whitelists indexed for lookup.
var allowed = func() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(whitelists))
	for itemType, fields := range whitelists {
		set := make(map[string]bool, len(fields))
		for _, f := range fields {
			set[f] = true
		}
		out[itemType] = set
	}
	return out
}()

// Whitelist returns the sorted field names accepted for an item type.
// Unknown item types get the document whitelist.
func Whitelist(itemType string) []string {
	fields, ok := whitelists[itemType]
	if !ok {
		fields = whitelists["document"]
	}
	out := append([]string(nil), fields...)
	sort.Strings(out)
	return out
}

// Allowed reports whether field is accepted for an item type.
func Allowed(itemType, field string) bool {
	set, ok := allowed[itemType]
	if !ok {
		set = allowed["document"]
	}
	return set[field]
}

// ItemTypes returns every item type with a whitelist, sorted.
func ItemTypes() []string {
	out := make([]string, 0, len(whitelists))
	for t := range whitelists {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
