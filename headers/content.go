package headers

import (
	"strconv"
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// MediaType is a parsed Content-Type value.
type MediaType struct {
	Type    string            `json:"type"`
	Subtype string            `json:"subtype"`
	Params  map[string]string `json:"params,omitempty"`
}

func (m MediaType) String() string {
	return m.Type + "/" + m.Subtype
}

// §  8.3.  Content-Type (RFC 9110)
// §
// §    media-type = type "/" subtype parameters
// §    type       = token
// §    subtype    = token
type contentTypeAnalyzer struct{}

func init() { register(contentTypeAnalyzer{}) }

func (contentTypeAnalyzer) CanonicalName() string { return "Content-Type" }

func (contentTypeAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Content-Type")
	value := singleton("Content-Type", values, ns)
	parts := strings.Split(value, ";")
	mtype, subtype, ok := strings.Cut(strings.TrimSpace(parts[0]), "/")
	if !ok || !rfc9110.IsToken(mtype) || !rfc9110.IsToken(subtype) {
		ns.add("CT_BAD_SYNTAX", "value", value)
		return nil, ns.notes
	}
	mt := MediaType{
		Type:    strings.ToLower(mtype),
		Subtype: strings.ToLower(subtype),
	}
	for _, param := range parts[1:] {
		name, arg, hasArg := strings.Cut(strings.TrimSpace(param), "=")
		if !hasArg || !rfc9110.IsToken(name) {
			ns.add("CT_BAD_SYNTAX", "value", value)
			return nil, ns.notes
		}
		if mt.Params == nil {
			mt.Params = make(map[string]string)
		}
		mt.Params[strings.ToLower(name)] = rfc9110.Unquote(arg)
	}
	return mt, ns.notes
}

// §  8.6.  Content-Length (RFC 9110): 1*DIGIT; a list of identical values
// §  can be tolerated, but is still a sender defect worth flagging.
type contentLengthAnalyzer struct{}

func init() { register(contentLengthAnalyzer{}) }

func (contentLengthAnalyzer) CanonicalName() string { return "Content-Length" }

func (contentLengthAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Content-Length")
	members := listMembers(values)
	if len(members) > 1 {
		ns.add("FIELD_SINGLETON_REPEATED",
			"field_name", "Content-Length",
			"count", strconv.Itoa(len(members)))
	}
	var length int64 = -1
	for _, member := range members {
		n, ok := rfc9110.DeltaSeconds(member)
		if !ok {
			ns.add("CL_NOT_INT", "value", member)
			return nil, ns.notes
		}
		if length >= 0 && n != length {
			ns.add("CL_CONFLICTING_VALUES",
				"values", strings.Join(members, ", "))
			return nil, ns.notes
		}
		length = n
	}
	if length < 0 {
		ns.add("CL_NOT_INT", "value", "")
		return nil, ns.notes
	}
	return length, ns.notes
}

// codingListAnalyzer covers Transfer-Encoding and Content-Encoding: both
// are lists of coding tokens checked against a known set.
type codingListAnalyzer struct {
	name   string
	known  map[string]bool
	noteID string
	// chunkedLast enforces that chunked, when present, is final.
	chunkedLast bool
}

func init() {
	register(codingListAnalyzer{
		name: "Transfer-Encoding",
		known: map[string]bool{
			"chunked": true, "compress": true, "deflate": true,
			"gzip": true, "x-gzip": true, "identity": true,
		},
		noteID:      "TE_UNKNOWN_CODING",
		chunkedLast: true,
	})
	register(codingListAnalyzer{
		name: "Content-Encoding",
		known: map[string]bool{
			"gzip": true, "x-gzip": true, "compress": true,
			"deflate": true, "br": true, "zstd": true, "identity": true,
		},
		noteID: "CE_UNKNOWN_CODING",
	})
}

func (a codingListAnalyzer) CanonicalName() string { return a.name }

func (a codingListAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor(a.name)
	var codings []string
	for _, member := range listMembers(values) {
		coding := strings.ToLower(member)
		if !rfc9110.IsToken(coding) {
			ns.add("BAD_SYNTAX", "field_name", a.name, "value", member)
			continue
		}
		if !a.known[coding] {
			ns.add(a.noteID, "coding", coding)
		}
		codings = append(codings, coding)
	}
	if a.chunkedLast {
		for i, coding := range codings {
			if coding == "chunked" && i != len(codings)-1 {
				ns.add("TE_CHUNKED_NOT_LAST")
			}
		}
	}
	return codings, ns.notes
}
