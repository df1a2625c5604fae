package mapper

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/bibnow/internal/importer"
	"github.com/matsen/bibnow/internal/reference"
)

func source(rawType string, fields map[string]any) reference.SourceRecord {
	rec := reference.NewSourceRecord(rawType, "key")
	for k, v := range fields {
		rec.Set(k, v)
	}
	return rec
}

// kitchenSink carries every field name the transforms know about plus a few
// they do not.
func kitchenSink(rawType string) reference.SourceRecord {
	return source(rawType, map[string]any{
		"author":          "Smith, Jane and Doe, John",
		"editor":          "Brown, Ann",
		"title":           "A Study of Bees",
		"title-short":     "Bees",
		"container-title": "Journal of Bees",
		"journal":         "Other Journal",
		"booktitle":       "Proceedings of Bees",
		"publisher":       "Bee Press",
		"address":         "London",
		"school":          "MIT",
		"institution":     "Bee Institute",
		"genre":           "Working paper",
		"event":           "BeeConf",
		"issued":          map[string]any{"raw": "2020-05-01"},
		"year":            "2020",
		"pages":           "1--10",
		"accessed":        map[string]any{"raw": "2024-01-02"},
		"URL":             "https://example.org",
		"abstract":        "About bees.",
		"DOI":             "10.1234/bees",
		"PMID":            "123",
		"ISBN":            "978-3-16-148410-0",
		"ISSN":            "1234-5678",
		"number":          "7",
		"volume":          "12",
		"issue":           "3",
		"edition":         "2",
		"series":          "Bee Series",
		"language":        "en",
		"keywords":        "bees, honey; pollen",
		"note":            "Read twice.",
		"court":           "Supreme Court",
		"authority":       "Ninth Circuit",
		"legislativebody": "Senate",
		"billnumber":      "S. 1",
		"session":         "118th",
		"committee":       "Agriculture",
		"medium":          "Video",
		"section":         "4",
		"code":            "U.S.C.",
		"reporter":        "U.S.",
		"callnumber":      "QA76",
		"howpublished":    "Online",
		"rights":          "CC-BY",
		"version":         "1.2",
	})
}

func TestMap_WhitelistInvariant(t *testing.T) {
	for _, et := range reference.AllEntryTypes {
		t.Run(string(et), func(t *testing.T) {
			dest, _ := MapAs(kitchenSink(string(et)), et)

			for name := range dest.Fields {
				if !Allowed(dest.ItemType, name) {
					t.Errorf("field %q not allowed for %s", name, dest.ItemType)
				}
			}

			data, err := json.Marshal(dest)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var flat map[string]any
			if err := json.Unmarshal(data, &flat); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			for key := range flat {
				switch key {
				case "itemType", "creators", "tags", "extra":
					continue
				}
				if !Allowed(dest.ItemType, key) {
					t.Errorf("serialized key %q not allowed for %s", key, dest.ItemType)
				}
			}

			if len(dest.Creators) == 0 {
				t.Error("Creators is empty")
			}
		})
	}
}

func TestMap_Deterministic(t *testing.T) {
	input := `@article{smith2020,
  author = {Smith, Jane and Doe, John},
  title = {A Study of Bees},
  journal = {Journal of Bees},
  year = {2020},
  month = mar,
  doi = {10.1234/bees},
  callnumber = {QA76},
  mystery = {value},
  keywords = {bees, honey},
  note = {Read twice.}
}`

	run := func() (reference.DestinationRecord, []MappingWarning, string) {
		records, errs := importer.Parse(input)
		if len(errs) > 0 || len(records) != 1 {
			t.Fatalf("Parse() = %d records, errors %v", len(records), errs)
		}
		dest, warnings := Map(records[0])
		data, err := json.Marshal(dest)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		return dest, warnings, string(data)
	}

	dest1, warn1, json1 := run()
	dest2, warn2, json2 := run()

	if !reflect.DeepEqual(dest1, dest2) {
		t.Errorf("records differ:\n%+v\n%+v", dest1, dest2)
	}
	if !reflect.DeepEqual(warn1, warn2) {
		t.Errorf("warnings differ:\n%+v\n%+v", warn1, warn2)
	}
	if json1 != json2 {
		t.Errorf("JSON differs:\n%s\n%s", json1, json2)
	}

	wantExtra := "Read twice.\ncallnumber: QA76\nmystery: value"
	if dest1.Extra != wantExtra {
		t.Errorf("Extra = %q, want %q", dest1.Extra, wantExtra)
	}
	if got := dest1.Get("DOI"); got != "10.1234/bees" {
		t.Errorf("DOI = %q, want 10.1234/bees", got)
	}
	if got := dest1.Get("date"); got != "2020-03" {
		t.Errorf("date = %q, want 2020-03", got)
	}
}

func TestMap_Case(t *testing.T) {
	rec := source("case", map[string]any{
		"title":     "Roe v. Wade",
		"authority": "Supreme Court",
		"issued":    map[string]any{"raw": "1973-01-22"},
	})

	dest, warnings := Map(rec)

	if dest.ItemType != "case" {
		t.Errorf("ItemType = %q, want case", dest.ItemType)
	}
	want := map[string]string{
		"caseName":    "Roe v. Wade",
		"court":       "Supreme Court",
		"dateDecided": "1973-01-22",
	}
	if !reflect.DeepEqual(dest.Fields, want) {
		t.Errorf("Fields = %v, want %v", dest.Fields, want)
	}
	if _, ok := dest.Fields["title"]; ok {
		t.Error("title key present")
	}
	if _, ok := dest.Fields["date"]; ok {
		t.Error("date key present")
	}
	if dest.Extra != "" || len(warnings) != 0 {
		t.Errorf("Extra = %q, warnings = %v; want none", dest.Extra, warnings)
	}
	wantCreators := []reference.Creator{{CreatorType: "author", Name: "Supreme Court"}}
	if !reflect.DeepEqual(dest.Creators, wantCreators) {
		t.Errorf("Creators = %+v, want %+v", dest.Creators, wantCreators)
	}
}

func TestMap_CaseDetails(t *testing.T) {
	rec := source("legal_case", map[string]any{
		"title":           "Brown v. Board of Education",
		"court":           "Supreme Court",
		"issued":          map[string]any{"date-parts": []any{[]any{json.Number("1954")}}},
		"page":            "483",
		"number":          "1",
		"container-title": "U.S.",
		"volume":          "347",
	})

	dest, _ := Map(rec)

	want := map[string]string{
		"caseName":       "Brown v. Board of Education",
		"court":          "Supreme Court",
		"dateDecided":    "1954",
		"firstPage":      "483",
		"docketNumber":   "1",
		"reporter":       "U.S.",
		"reporterVolume": "347",
	}
	if !reflect.DeepEqual(dest.Fields, want) {
		t.Errorf("Fields = %v, want %v", dest.Fields, want)
	}
}

func TestMap_Bill(t *testing.T) {
	rec := source("bill", map[string]any{
		"billnumber":      "HR123",
		"session":         "118th",
		"legislativebody": "U.S. House",
	})

	dest, warnings := Map(rec)

	want := map[string]string{
		"billNumber":      "HR123",
		"session":         "118th",
		"legislativeBody": "U.S. House",
	}
	if !reflect.DeepEqual(dest.Fields, want) {
		t.Errorf("Fields = %v, want %v", dest.Fields, want)
	}
	if dest.Extra != "" || len(warnings) != 0 {
		t.Errorf("Extra = %q, warnings = %v; want no overflow", dest.Extra, warnings)
	}
	wantCreators := []reference.Creator{{CreatorType: "sponsor", Name: "U.S. House"}}
	if !reflect.DeepEqual(dest.Creators, wantCreators) {
		t.Errorf("Creators = %+v, want %+v", dest.Creators, wantCreators)
	}
}

func TestMap_CallNumberOverflow(t *testing.T) {
	rec := source("article", map[string]any{
		"title":      "Computing",
		"callnumber": "QA76",
	})

	dest, warnings := Map(rec)

	if dest.ItemType != "journalArticle" {
		t.Errorf("ItemType = %q, want journalArticle", dest.ItemType)
	}
	if !strings.Contains(dest.Extra, "callnumber: QA76") {
		t.Errorf("Extra = %q, want a callnumber line", dest.Extra)
	}
	if _, ok := dest.Fields["callnumber"]; ok {
		t.Error("callnumber present as a field")
	}
	if len(warnings) != 1 || warnings[0].Field != "callnumber" {
		t.Errorf("warnings = %+v, want one for callnumber", warnings)
	}
}

func TestMap_Transforms(t *testing.T) {
	tests := []struct {
		name   string
		rec    reference.SourceRecord
		want   map[string]string
		extras []string
	}{
		{
			name: "container precedence",
			rec: source("article", map[string]any{
				"container-title": "Primary",
				"journal":         "Secondary",
			}),
			want:   map[string]string{"publicationTitle": "Primary"},
			extras: []string{"journal: Secondary"},
		},
		{
			name: "journal beats booktitle",
			rec: source("article", map[string]any{
				"journal":   "Journal",
				"booktitle": "Book",
			}),
			want:   map[string]string{"publicationTitle": "Journal"},
			extras: []string{"booktitle: Book"},
		},
		{
			name: "book section",
			rec: source("incollection", map[string]any{
				"booktitle": "Collected Works",
				"publisher": "Press",
				"pages":     "5--9",
			}),
			want: map[string]string{"bookTitle": "Collected Works", "publisher": "Press", "pages": "5--9"},
		},
		{
			name: "conference",
			rec: source("inproceedings", map[string]any{
				"booktitle": "Proc. X",
				"event":     "X 2020",
				"doi":       "10.1/x",
			}),
			want: map[string]string{"proceedingsTitle": "Proc. X", "conferenceName": "X 2020", "DOI": "10.1/x"},
		},
		{
			name: "thesis",
			rec: source("phdthesis", map[string]any{
				"school":      "MIT",
				"institution": "MIT",
				"genre":       "PhD thesis",
			}),
			want: map[string]string{"university": "MIT", "thesisType": "PhD thesis"},
		},
		{
			name: "thesis publisher wins",
			rec: source("thesis", map[string]any{
				"publisher": "Oxford",
				"school":    "Balliol",
			}),
			want:   map[string]string{"university": "Oxford"},
			extras: []string{"school: Balliol"},
		},
		{
			name: "report",
			rec: source("techreport", map[string]any{
				"institution": "NASA",
				"number":      "TR-1",
				"genre":       "Technical report",
			}),
			want: map[string]string{"institution": "NASA", "reportNumber": "TR-1", "reportType": "Technical report"},
		},
		{
			name: "genre without home",
			rec: source("article", map[string]any{
				"genre": "Review",
			}),
			want:   map[string]string{},
			extras: []string{"genre: Review"},
		},
		{
			name: "event outside conferences",
			rec: source("book", map[string]any{
				"event": "Fair",
			}),
			want:   map[string]string{},
			extras: []string{"event: Fair"},
		},
		{
			name: "presentation",
			rec: source("speech", map[string]any{
				"event": "Annual Meeting",
				"genre": "Keynote",
			}),
			want: map[string]string{"meetingName": "Annual Meeting", "presentationType": "Keynote"},
		},
		{
			name: "hearing",
			rec: source("hearing", map[string]any{
				"committee": "Judiciary",
				"authority": "Senate",
			}),
			want: map[string]string{"committee": "Judiciary", "legislativeBody": "Senate"},
		},
		{
			name: "interview medium",
			rec:  source("interview", map[string]any{"medium": "Phone"}),
			want: map[string]string{"interviewMedium": "Phone"},
		},
		{
			name: "audio medium",
			rec:  source("song", map[string]any{"medium": "CD"}),
			want: map[string]string{"audioRecordingFormat": "CD"},
		},
		{
			name: "video medium",
			rec:  source("motion_picture", map[string]any{"medium": "DVD"}),
			want: map[string]string{"videoRecordingFormat": "DVD"},
		},
		{
			name: "statute",
			rec: source("legislation", map[string]any{
				"title":   "Clean Air Act",
				"year":    "1963",
				"section": "7401",
			}),
			want: map[string]string{"nameOfAct": "Clean Air Act", "dateEnacted": "1963", "section": "7401"},
		},
		{
			name: "csl aliases",
			rec: source("article-journal", map[string]any{
				"URL":         "https://x.org",
				"abstract":    "Text",
				"title-short": "Short",
				"page":        "3-4",
				"accessed":    map[string]any{"raw": "2024-05-06"},
			}),
			want: map[string]string{
				"url":          "https://x.org",
				"abstractNote": "Text",
				"shortTitle":   "Short",
				"pages":        "3-4",
				"accessDate":   "2024-05-06",
			},
		},
		{
			name: "accessed without raw overflows",
			rec: source("webpage", map[string]any{
				"accessed": map[string]any{"date-parts": []any{[]any{json.Number("2024"), json.Number("5")}}},
			}),
			want:   map[string]string{},
			extras: []string{"accessed: 2024-5"},
		},
		{
			name:   "doi without home",
			rec:    source("book", map[string]any{"doi": "10.1/book"}),
			want:   map[string]string{},
			extras: []string{"DOI: 10.1/book"},
		},
		{
			name: "date parts",
			rec: source("article-journal", map[string]any{
				"issued": map[string]any{"date-parts": []any{[]any{json.Number("2020"), json.Number("5")}}},
			}),
			want: map[string]string{"date": "2020-5"},
		},
		{
			name: "unknown type uses document",
			rec: source("patent", map[string]any{
				"publisher": "USPTO",
				"volume":    "3",
			}),
			want:   map[string]string{"publisher": "USPTO"},
			extras: []string{"volume: 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, _ := Map(tt.rec)
			if !reflect.DeepEqual(dest.Fields, tt.want) {
				t.Errorf("Fields = %v, want %v", dest.Fields, tt.want)
			}
			for _, line := range tt.extras {
				if !strings.Contains(dest.Extra, line) {
					t.Errorf("Extra = %q, want line %q", dest.Extra, line)
				}
			}
			if len(tt.extras) == 0 && dest.Extra != "" {
				t.Errorf("Extra = %q, want empty", dest.Extra)
			}
		})
	}
}

func TestMap_ExtraOrdering(t *testing.T) {
	rec := source("book", map[string]any{
		"note":          "First note.",
		"zeta":          "z",
		"alpha":         "a",
		"original-date": "1850",
		"PMID":          "99",
		"DOI":           "10.1/b",
		"annote":        "Second note.",
	})

	dest, warnings := Map(rec)

	want := "First note.\nSecond note.\nDOI: 10.1/b\nPMID: 99\noriginal-date: 1850\nalpha: a\nzeta: z"
	if dest.Extra != want {
		t.Errorf("Extra = %q, want %q", dest.Extra, want)
	}
	if len(warnings) != 5 {
		t.Errorf("got %d warnings, want 5: %+v", len(warnings), warnings)
	}
}

func TestMap_Tags(t *testing.T) {
	dest, _ := Map(source("article", map[string]any{"keywords": "bees, honey; bees, ,pollen"}))
	want := []reference.Tag{{Tag: "bees"}, {Tag: "honey"}, {Tag: "pollen"}}
	if !reflect.DeepEqual(dest.Tags, want) {
		t.Errorf("Tags = %+v, want %+v", dest.Tags, want)
	}
}

func TestMap_CreatorRoles(t *testing.T) {
	tests := []struct {
		rawType string
		want    []string
	}{
		{"article", []string{"author", "editor"}},
		{"video", []string{"director", "contributor"}},
		{"thesis", []string{"author", "contributor"}},
		{"speech", []string{"presenter", "contributor"}},
	}

	for _, tt := range tests {
		t.Run(tt.rawType, func(t *testing.T) {
			dest, _ := Map(source(tt.rawType, map[string]any{"author": "Smith, Jane", "editor": "Doe, John"}))
			var got []string
			for _, c := range dest.Creators {
				got = append(got, c.CreatorType)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("creator types = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthNumber(t *testing.T) {
	tests := map[string]string{
		"3":         "03",
		"12":        "12",
		"mar":       "03",
		"September": "09",
		"13":        "",
		"spring":    "",
		"":          "",
	}
	for in, want := range tests {
		if got := monthNumber(in); got != want {
			t.Errorf("monthNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWhitelist(t *testing.T) {
	if got := Whitelist("nonsense"); !reflect.DeepEqual(got, Whitelist("document")) {
		t.Errorf("Whitelist(nonsense) = %v, want document whitelist", got)
	}
	for _, itemType := range ItemTypes() {
		if Allowed(itemType, "extra") {
			t.Errorf("%s whitelist contains extra", itemType)
		}
	}
	for _, et := range reference.AllEntryTypes {
		if _, ok := whitelists[et.ItemType()]; !ok {
			t.Errorf("no whitelist for %s", et.ItemType())
		}
	}
}

func TestMap_ArrayOverflowKeepsEveryElement(t *testing.T) {
	rec := source("article-journal", map[string]any{
		"title":   "Bees",
		"subject": []any{"Biology", "Chemistry"},
		"translator": []any{
			map[string]any{"family": "Tr1", "given": "X"},
			map[string]any{"family": "Tr2", "given": "Y"},
		},
		"keywordsList": []string{"a", "", "b"},
	})

	dest, _ := Map(rec)

	for _, line := range []string{
		"subject: Biology; Chemistry",
		"translator: Tr1, X; Tr2, Y",
		"keywordsList: a; b",
	} {
		if !strings.Contains(dest.Extra, line) {
			t.Errorf("Extra = %q, want line %q", dest.Extra, line)
		}
	}
}
