package headers

import (
	"strings"
	"time"

	"github.com/vfaronov/httpheader"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// §  8.8.3.  ETag (RFC 9110)
// §
// §    ETag       = entity-tag
// §    entity-tag = [ weak ] opaque-tag
// §    weak       = %s"W/"
// §    opaque-tag = DQUOTE *etagc DQUOTE
type etagAnalyzer struct{}

func init() { register(etagAnalyzer{}) }

func (etagAnalyzer) CanonicalName() string { return "ETag" }

func (etagAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("ETag")
	value := singleton("ETag", values, ns)
	opaque, weak := value, false
	if strings.HasPrefix(opaque, "W/") {
		weak = true
		opaque = opaque[2:]
	}
	if !isOpaqueTag(opaque) {
		ns.add("ETAG_BAD_SYNTAX", "value", value)
		return nil, ns.notes
	}
	return httpheader.EntityTag{Weak: weak, Opaque: opaque[1 : len(opaque)-1]}, ns.notes
}

func isOpaqueTag(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	// etagc = %x21 / %x23-7E / obs-text
	for i := 1; i < len(s)-1; i++ {
		if s[i] == '"' || s[i] < 0x21 {
			return false
		}
	}
	return true
}

// §  10.2.3.  Retry-After
// §
// §    Retry-After = HTTP-date / delay-seconds
type retryAfterAnalyzer struct{}

func init() { register(retryAfterAnalyzer{}) }

// RetryAfter is either an absolute date or a delay; exactly one is set.
type RetryAfter struct {
	Date    time.Time `json:"date,omitempty"`
	Seconds int64     `json:"seconds,omitempty"`
}

func (retryAfterAnalyzer) CanonicalName() string { return "Retry-After" }

func (retryAfterAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Retry-After")
	value := singleton("Retry-After", values, ns)
	if seconds, ok := rfc9110.DeltaSeconds(value); ok {
		return RetryAfter{Seconds: seconds}, ns.notes
	}
	if date, _, err := rfc9110.Date(value); err == nil {
		return RetryAfter{Date: date}, ns.notes
	}
	ns.add("RETRY_AFTER_BAD", "value", value)
	return nil, ns.notes
}
