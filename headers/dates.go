package headers

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// dateAnalyzer covers the singleton HTTP-date headers, which share their
// grammar and differ only in name (Date, Expires, Last-Modified).
type dateAnalyzer struct {
	name string
	// checkFuture flags timestamps later than the present (Last-Modified).
	checkFuture bool
	clock       clock.Clock
}

func init() {
	register(dateAnalyzer{name: "Date", clock: clock.New()})
	register(dateAnalyzer{name: "Expires", clock: clock.New()})
	register(dateAnalyzer{name: "Last-Modified", checkFuture: true, clock: clock.New()})
}

func (a dateAnalyzer) CanonicalName() string { return a.name }

func (a dateAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor(a.name)
	value := singleton(a.name, values, ns)
	date, obsolete, err := rfc9110.Date(value)
	if err != nil {
		// §  A cache recipient MUST interpret invalid date formats,
		// §  especially the value "0", as representing a time in the
		// §  past. The typed value stays absent; crosscheck knows an
		// §  absent Expires means already stale when the field exists.
		ns.add("BAD_DATE_SYNTAX", "field_name", a.name, "value", value)
		return nil, ns.notes
	}
	if obsolete {
		ns.add("DATE_OBSOLETE_FORMAT", "field_name", a.name)
	}
	if a.checkFuture && date.After(a.clock.Now().Add(time.Minute)) {
		ns.add("LM_FUTURE")
	}
	return date, ns.notes
}
