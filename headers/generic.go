package headers

import (
	"strconv"

	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// genericAnalyze handles headers with no dedicated analyzer: it validates
// the generic field-value grammar and marks the header as unrecognized.
// It never produces a typed value; the raw field lines stay reachable
// through Message.Values.
func genericAnalyze(name string, values []string) (interface{}, []note.Note) {
	ns := notesFor(name)
	ns.add("HEADER_NOT_RECOGNIZED", "field_name", name)
	if len(values) > 1 {
		ns.add("FIELD_REPEATED",
			"field_name", name,
			"count", strconv.Itoa(len(values)))
	}
	for _, v := range values {
		if !rfc9110.IsFieldValue(v) {
			ns.add("BAD_SYNTAX", "field_name", name, "value", v)
		}
	}
	return nil, ns.notes
}
