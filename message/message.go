// Package message parses one side of a raw HTTP/1.1 exchange into a
// structured model, preserving the wire-level details (field order, original
// casing, framing) that higher-level clients normalize away.
package message

import (
	"net/http"
	"net/textproto"
	"strings"
)

// Framing identifies how the end of the message body was determined.
type Framing int

const (
	// FramingNone means the message has no body (e.g. 204, 304, HEAD).
	FramingNone Framing = iota
	// FramingContentLength means the body length came from Content-Length.
	FramingContentLength
	// FramingChunked means the body used chunked transfer coding.
	FramingChunked
	// FramingClose means the body ran until the end of input.
	FramingClose
)

func (f Framing) String() string {
	switch f {
	case FramingNone:
		return "none"
	case FramingContentLength:
		return "content-length"
	case FramingChunked:
		return "chunked"
	case FramingClose:
		return "close"
	}
	return "unknown"
}

// HeaderField is one field line as received. Fields repeat and keep their
// received order; combining them is the analyzers' decision.
type HeaderField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Offset is the byte position of the field line in the raw input.
	Offset int `json:"-"`
}

// Message is a parsed HTTP/1.1 message.
type Message struct {
	// Response start line. StatusCode is zero for requests.
	Version      string `json:"version,omitempty"`
	StatusCode   int    `json:"statusCode,omitempty"`
	ReasonPhrase string `json:"reasonPhrase,omitempty"`

	// Request line. Method is empty for responses.
	Method string `json:"method,omitempty"`
	Target string `json:"target,omitempty"`

	Fields []HeaderField `json:"fields"`

	Framing Framing `json:"framing"`
	// DeclaredLength is the Content-Length value when framed by it.
	DeclaredLength int64 `json:"declaredLength,omitempty"`

	// Body holds the received body bytes, possibly truncated at the
	// capture cap. BodyLength counts everything received.
	Body          []byte `json:"-"`
	BodyLength    int64  `json:"bodyLength"`
	BodyTruncated bool   `json:"bodyTruncated,omitempty"`

	// HeaderLength is the byte length of the start line and header block.
	HeaderLength int `json:"headerLength"`
}

// Values returns all values for the named field in received order.
// Lookup is case-insensitive.
func (m *Message) Values(name string) []string {
	var vals []string
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Get returns the first value for the named field, or "".
func (m *Message) Get(name string) string {
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the named field is present.
func (m *Message) Has(name string) bool {
	for _, f := range m.Fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// FieldNames returns the distinct field names in first-appearance order,
// in their original casing.
func (m *Message) FieldNames() []string {
	var names []string
	seen := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		key := strings.ToLower(f.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// Header builds an http.Header view of the fields for interoperating with
// libraries that expect one. The view loses received order and casing; it
// must not be used where those matter.
func (m *Message) Header() http.Header {
	h := make(http.Header, len(m.Fields))
	for _, f := range m.Fields {
		key := textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(f.Name))
		h[key] = append(h[key], f.Value)
	}
	return h
}
