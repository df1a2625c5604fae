package mapper

import (
	"github.com/matsen/bibnow/internal/reference"
)

// caseOverride maps a legal case onto the case schema: the title becomes the
// case name, the date becomes the decision date and the reporter citation is
// split into its parts.
var caseOverride = transform{
	name: "case",
	apply: func(src reference.SourceRecord, d *draft) []string {
		var claimed []string

		d.rename("title", "caseName")

		decided := reference.RawDate(src.Fields["issued"])
		if decided == "" {
			decided = d.fields["date"]
		}
		delete(d.fields, "date")
		d.set("dateDecided", decided)

		court, c := pick(src, "court", "authority")
		d.set("court", court)
		claimed = append(claimed, c...)

		page, c := pick(src, "page", "pages")
		d.set("firstPage", page)
		claimed = append(claimed, c...)

		docket, c := pick(src, "number", "docket")
		d.set("docketNumber", docket)
		claimed = append(claimed, c...)

		reporter, c := pick(src, "reporter", "container-title", "journal")
		d.set("reporter", reporter)
		claimed = append(claimed, c...)

		volume, c := pick(src, "volume")
		d.set("reporterVolume", volume)
		claimed = append(claimed, c...)

		return claimed
	},
}

var billOverride = transform{
	name: "bill",
	apply: func(src reference.SourceRecord, d *draft) []string {
		var claimed []string

		number, c := pick(src, "billnumber", "number")
		d.set("billNumber", number)
		claimed = append(claimed, c...)

		session, c := pick(src, "session")
		d.set("session", session)
		claimed = append(claimed, c...)

		body, c := pick(src, "legislativebody", "authority")
		d.set("legislativeBody", body)
		claimed = append(claimed, c...)

		code, c := pick(src, "code", "container-title")
		d.set("code", code)
		claimed = append(claimed, c...)

		return claimed
	},
}

var hearingOverride = transform{
	name: "hearing",
	apply: func(src reference.SourceRecord, d *draft) []string {
		var claimed []string

		committee, c := pick(src, "committee")
		d.set("committee", committee)
		claimed = append(claimed, c...)

		body, c := pick(src, "legislativebody", "authority")
		d.set("legislativeBody", body)
		claimed = append(claimed, c...)

		number, c := pick(src, "number")
		d.set("documentNumber", number)
		claimed = append(claimed, c...)

		return claimed
	},
}

var presentationOverride = transform{
	name: "presentation",
	apply: func(src reference.SourceRecord, d *draft) []string {
		meeting, claimed := pick(src, "event", "event-title", "eventtitle")
		d.set("meetingName", meeting)
		return claimed
	},
}

// mediumOverride maps medium onto the type-specific format field.
func mediumOverride(target string) transform {
	return transform{
		name: target,
		apply: func(src reference.SourceRecord, d *draft) []string {
			v, claimed := pick(src, "medium")
			d.set(target, v)
			return claimed
		},
	}
}

var statuteOverride = transform{
	name: "statute",
	apply: func(src reference.SourceRecord, d *draft) []string {
		var claimed []string

		d.rename("title", "nameOfAct")
		d.rename("date", "dateEnacted")

		code, c := pick(src, "code", "container-title")
		d.set("code", code)
		claimed = append(claimed, c...)

		section, c := pick(src, "section")
		d.set("section", section)
		claimed = append(claimed, c...)

		law, c := pick(src, "number")
		d.set("publicLawNumber", law)
		claimed = append(claimed, c...)

		return claimed
	},
}

// overrides run after the common transforms and may rename or remove fields
// those produced.
var overrides = map[reference.EntryType][]transform{
	reference.Case:           {caseOverride},
	reference.Bill:           {billOverride},
	reference.Hearing:        {hearingOverride},
	reference.Presentation:   {presentationOverride},
	reference.Interview:      {mediumOverride("interviewMedium")},
	reference.AudioRecording: {mediumOverride("audioRecordingFormat")},
	reference.VideoRecording: {mediumOverride("videoRecordingFormat")},
	reference.Statute:        {statuteOverride},
}

// handlers returns the ordered transform list for an entry type.
func handlers(et reference.EntryType) []transform {
	out := make([]transform, 0, len(commonTransforms)+len(overrides[et]))
	out = append(out, commonTransforms...)
	return append(out, overrides[et]...)
}
