package importer

import (
	"errors"
	"testing"
)

func TestParseBibTeX_BasicEntry(t *testing.T) {
	input := `@Article{smith2020,
  author  = {Smith, Jane and Doe, John},
  title   = {A {DNA} Study of    Bees},
  journal = "Journal of Bees",
  year    = 2020,
  pages   = {1--10},
}`

	records, errs := ParseBibTeX(input)
	if len(errs) > 0 {
		t.Fatalf("ParseBibTeX() errors = %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("ParseBibTeX() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Type != "article" {
		t.Errorf("Type = %q, want article", rec.Type)
	}
	if rec.Key != "smith2020" {
		t.Errorf("Key = %q, want smith2020", rec.Key)
	}

	want := map[string]string{
		"author":  "Smith, Jane and Doe, John",
		"title":   "A {DNA} Study of Bees",
		"journal": "Journal of Bees",
		"year":    "2020",
		"pages":   "1--10",
	}
	for field, value := range want {
		if got := rec.String(field); got != value {
			t.Errorf("%s = %q, want %q", field, got, value)
		}
	}
}

func TestParseBibTeX_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		want  string
	}{
		{
			name:  "multi-line value",
			input: "@misc{k,\n  note = {first line\n      second line}\n}",
			field: "note",
			want:  "first line second line",
		},
		{
			name:  "embedded equals",
			input: `@misc{k, note = {a = b, c = d}}`,
			field: "note",
			want:  "a = b, c = d",
		},
		{
			name:  "string macro with concatenation",
			input: "@string{jb = \"Journal of Bees\"}\n@article{k, journal = jb # \" Letters\"}",
			field: "journal",
			want:  "Journal of Bees Letters",
		},
		{
			name:  "month macro",
			input: `@article{k, month = mar}`,
			field: "month",
			want:  "March",
		},
		{
			name:  "undefined macro kept",
			input: `@article{k, howpublished = somewhere}`,
			field: "howpublished",
			want:  "somewhere",
		},
		{
			name:  "quoted value with braces",
			input: `@article{k, title = "The {"}Quote{"} Problem"}`,
			field: "title",
			want:  `The {"}Quote{"} Problem`,
		},
		{
			name:  "field names lower-cased",
			input: `@article{k, TITLE = {Upper}}`,
			field: "title",
			want:  "Upper",
		},
		{
			name:  "parenthesised entry",
			input: `@misc(k, title = "Paren")`,
			field: "title",
			want:  "Paren",
		},
		{
			name:  "first duplicate wins",
			input: `@misc{k, title = {One}, title = {Two}}`,
			field: "title",
			want:  "One",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errs := ParseBibTeX(tt.input)
			if len(errs) > 0 {
				t.Fatalf("ParseBibTeX() errors = %v", errs)
			}
			if len(records) != 1 {
				t.Fatalf("ParseBibTeX() returned %d records, want 1", len(records))
			}
			if got := records[0].String(tt.field); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestParseBibTeX_SkipsCommentAndPreamble(t *testing.T) {
	input := `Some text before, mail me@example.com.
@comment{ignore {me} please}
@preamble{"\newcommand{\noop}[1]{}"}
@book{b1, title = {Kept}}`

	records, errs := ParseBibTeX(input)
	if len(errs) > 0 {
		t.Fatalf("ParseBibTeX() errors = %v", errs)
	}
	if len(records) != 1 || records[0].Key != "b1" {
		t.Fatalf("ParseBibTeX() = %+v, want only b1", records)
	}
}

func TestParseBibTeX_UnknownTypeVerbatim(t *testing.T) {
	records, errs := ParseBibTeX(`@Patent{p1, title = {Widget}}`)
	if len(errs) > 0 {
		t.Fatalf("ParseBibTeX() errors = %v", errs)
	}
	if records[0].Type != "patent" {
		t.Errorf("Type = %q, want patent", records[0].Type)
	}
}

func TestParseBibTeX_MalformedBlockContinues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKeys []string
		wantKey  string
		wantLine int
	}{
		{
			name: "missing equals",
			input: `@article{good1, title = {One}}
@article{bad, title {Missing equals}}
@book{good2, title = {Two}}`,
			wantKeys: []string{"good1", "good2"},
			wantKey:  "bad",
			wantLine: 2,
		},
		{
			name: "unbalanced braces",
			input: `@article{bad, title = {Never closed
@book{good, title = {Fine}}`,
			wantKeys: []string{"good"},
			wantKey:  "bad",
			wantLine: 1,
		},
		{
			name: "entry not closed",
			input: `@article{bad, title = {Closed value}
@book{good, title = {Fine}}`,
			wantKeys: []string{"good"},
			wantKey:  "bad",
			wantLine: 1,
		},
		{
			name: "missing key",
			input: `@article{title = {No key}}

@book{good, title = {Fine}}`,
			wantKeys: []string{"good"},
			wantKey:  "",
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errs := ParseBibTeX(tt.input)

			if len(records) != len(tt.wantKeys) {
				t.Fatalf("got %d records, want %d", len(records), len(tt.wantKeys))
			}
			for i, key := range tt.wantKeys {
				if records[i].Key != key {
					t.Errorf("records[%d].Key = %q, want %q", i, records[i].Key, key)
				}
			}

			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			var perr *ParseError
			if !errors.As(errs[0], &perr) {
				t.Fatalf("error %v is not a *ParseError", errs[0])
			}
			if perr.Key != tt.wantKey {
				t.Errorf("ParseError.Key = %q, want %q", perr.Key, tt.wantKey)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", perr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseBibTeX_Empty(t *testing.T) {
	records, errs := ParseBibTeX("no entries here")
	if len(records) != 0 || len(errs) != 0 {
		t.Errorf("ParseBibTeX() = %v, %v; want nothing", records, errs)
	}
}
