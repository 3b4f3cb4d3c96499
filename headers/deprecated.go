package headers

import (
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
)

// deprecatedAnalyzer covers headers that still appear in the wild but whose
// specifications have retired them (Pragma, Warning — RFC 9111 §5.4, §5.5).
type deprecatedAnalyzer struct {
	name   string
	advice string
}

func init() {
	register(deprecatedAnalyzer{
		name:   "Pragma",
		advice: "Pragma was deprecated in RFC 9111; use Cache-Control instead.",
	})
	register(deprecatedAnalyzer{
		name:   "Warning",
		advice: "The Warning header was removed from the HTTP caching specification in RFC 9111.",
	})
}

func (a deprecatedAnalyzer) CanonicalName() string { return a.name }

func (a deprecatedAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor(a.name)
	ns.add("HEADER_DEPRECATED",
		"field_name", a.name,
		"deprecation_ref", a.advice)
	return strings.Join(values, ", "), ns.notes
}
