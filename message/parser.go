package message

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// DefaultBodyCap bounds body capture when Options.BodyCap is zero.
const DefaultBodyCap = 512 * 1024

// Options controls parsing.
type Options struct {
	// BodyCap is the maximum number of body bytes to retain.
	BodyCap int64
}

// ParseError reports framing that could not be recovered from. The parser
// still returns the best partial Message it built.
type ParseError struct {
	Offset int
	Rule   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Offset, e.Rule)
}

// ParseResponse parses the raw bytes of an HTTP/1.1 response.
//
// It always returns a Message and the Notes raised while parsing; err is a
// *ParseError only when framing broke down beyond recovery, and even then
// the partial Message is usable.
func ParseResponse(raw []byte, opts Options) (*Message, []note.Note, error) {
	p := &parser{raw: raw, opts: opts, msg: &Message{}}
	err := p.parseResponse()
	return p.msg, p.notes, err
}

// ParseRequest parses the raw bytes of an HTTP/1.1 request, validating the
// request line (method token, target, version) instead of a status line.
func ParseRequest(raw []byte, opts Options) (*Message, []note.Note, error) {
	p := &parser{raw: raw, opts: opts, msg: &Message{}}
	err := p.parseRequest()
	return p.msg, p.notes, err
}

type parser struct {
	raw   []byte
	pos   int
	opts  Options
	msg   *Message
	notes []note.Note
}

func (p *parser) note(subject, id string, args ...string) {
	p.notes = append(p.notes, note.New(subject, id, args...))
}

func (p *parser) fail(rule string) *ParseError {
	return &ParseError{Offset: p.pos, Rule: rule}
}

// readLine consumes up to and including the next CRLF (a bare LF is
// tolerated, as recipients are encouraged to do) and returns the line
// without the terminator. ok is false at end of input.
func (p *parser) readLine() (line string, offset int, ok bool) {
	if p.pos >= len(p.raw) {
		return "", p.pos, false
	}
	offset = p.pos
	idx := bytes.IndexByte(p.raw[p.pos:], '\n')
	if idx < 0 {
		p.pos = len(p.raw)
		return string(p.raw[offset:]), offset, true
	}
	end := p.pos + idx
	p.pos = end + 1
	if end > offset && p.raw[end-1] == '\r' {
		end--
	}
	return string(p.raw[offset:end]), offset, true
}

func (p *parser) parseResponse() error {
	line, offset, ok := p.readLine()
	if !ok {
		return p.fail("empty input")
	}
	if err := p.parseStatusLine(line, offset); err != nil {
		return err
	}
	if err := p.parseFields(); err != nil {
		return err
	}
	return p.parseBody()
}

func (p *parser) parseRequest() error {
	line, offset, ok := p.readLine()
	if !ok {
		return p.fail("empty input")
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || !rfc9110.IsToken(parts[0]) || parts[1] == "" ||
		!strings.HasPrefix(parts[2], "HTTP/") {
		p.note(note.SubjectMessage, "STATUS_LINE_MALFORMED", "line", line)
		p.pos = offset
		return p.fail("malformed request line")
	}
	p.msg.Method = parts[0]
	p.msg.Target = parts[1]
	p.msg.Version = parts[2]
	if err := p.parseFields(); err != nil {
		return err
	}
	return p.parseBody()
}

// §  4.  Status Line (RFC 9112)
// §
// §    status-line = HTTP-version SP status-code SP [ reason-phrase ]
// §    status-code = 3DIGIT
func (p *parser) parseStatusLine(line string, offset int) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		p.note(note.SubjectMessage, "STATUS_LINE_MALFORMED", "line", line)
		p.pos = offset
		return p.fail("malformed status line")
	}
	p.msg.Version = parts[0]
	code, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 3 {
		p.note(note.SubjectMessage, "STATUS_LINE_MALFORMED", "line", line)
		p.pos = offset
		return p.fail("status code is not a 3-digit number")
	}
	p.msg.StatusCode = code
	if code < 100 || code > 599 {
		p.note(note.SubjectMessage, "STATUS_CODE_RANGE", "code", parts[1])
	}
	if len(parts) == 3 {
		p.msg.ReasonPhrase = parts[2]
	}
	return nil
}

func (p *parser) parseFields() error {
	for {
		line, offset, ok := p.readLine()
		if !ok {
			p.pos = offset
			return p.fail("header block not terminated by an empty line")
		}
		if line == "" {
			p.msg.HeaderLength = p.pos
			return nil
		}

		// §  Obsolete line folding: a field value continued on the next
		// §  line by starting it with whitespace. Joined per spec, but
		// §  flagged, since recipients are allowed to reject it.
		if line[0] == ' ' || line[0] == '\t' {
			if len(p.msg.Fields) == 0 {
				p.note(note.SubjectMessage, "FIELD_NO_COLON", "line", line)
				continue
			}
			last := &p.msg.Fields[len(p.msg.Fields)-1]
			p.note(note.HeaderSubject(last.Name), "LINE_FOLDING",
				"field_name", last.Name)
			last.Value = strings.TrimRight(last.Value, " \t") + " " +
				strings.Trim(line, " \t")
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			p.note(note.SubjectMessage, "FIELD_NO_COLON", "line", line)
			continue
		}
		name := line[:colon]
		if trimmed := strings.TrimRight(name, " \t"); trimmed != name {
			name = trimmed
			p.note(note.HeaderSubject(name), "FIELD_NAME_SPACE",
				"field_name", name)
		}
		p.msg.Fields = append(p.msg.Fields, HeaderField{
			Name:   name,
			Value:  strings.Trim(line[colon+1:], " \t"),
			Offset: offset,
		})
	}
}

// §  6.3.  Message Body Length (RFC 9112): Transfer-Encoding wins over
// §  Content-Length; a message with both is a smuggling vector.
func (p *parser) parseBody() error {
	if !statusAllowsBody(p.msg.StatusCode) {
		p.msg.Framing = FramingNone
		if p.pos < len(p.raw) {
			p.note(note.SubjectMessage, "BODY_NOT_ALLOWED")
			p.captureBody(p.raw[p.pos:])
		}
		return nil
	}

	te := p.msg.Values("Transfer-Encoding")
	cl := p.msg.Values("Content-Length")
	chunked := false
	for _, v := range te {
		for _, coding := range rfc9110.SplitList(v) {
			if strings.EqualFold(coding, "chunked") {
				chunked = true
			}
		}
	}

	if len(te) > 0 && len(cl) > 0 {
		p.note(note.SubjectMessage, "CL_TE_CONFLICT")
	}

	switch {
	case chunked:
		p.msg.Framing = FramingChunked
		return p.parseChunkedBody()
	case len(cl) > 0:
		if length, ok := contentLength(cl); ok {
			p.msg.Framing = FramingContentLength
			p.msg.DeclaredLength = length
			return p.parseLengthBody(length)
		}
		// Unusable Content-Length: the header analyzer reports the
		// syntax problem; framing falls back to close-delimited.
		fallthrough
	default:
		p.msg.Framing = FramingClose
		p.captureBody(p.raw[p.pos:])
		p.pos = len(p.raw)
		return nil
	}
}

func (p *parser) parseLengthBody(length int64) error {
	rest := p.raw[p.pos:]
	if int64(len(rest)) < length {
		p.captureBody(rest)
		p.pos = len(p.raw)
		p.note(note.SubjectMessage, "BODY_INCOMPLETE",
			"declared", strconv.FormatInt(length, 10),
			"received", strconv.FormatInt(int64(len(rest)), 10))
		return nil
	}
	p.captureBody(rest[:length])
	p.pos += int(length)
	if p.pos < len(p.raw) {
		p.note(note.SubjectMessage, "EXTRA_DATA",
			"sample", sample(p.raw[p.pos:]))
	}
	return nil
}

// captureBody appends bytes to the retained body, honoring the capture cap.
func (p *parser) captureBody(b []byte) {
	limit := p.opts.BodyCap
	if limit <= 0 {
		limit = DefaultBodyCap
	}
	p.msg.BodyLength += int64(len(b))
	room := limit - int64(len(p.msg.Body))
	if room <= 0 && len(b) > 0 {
		p.truncated(limit)
		return
	}
	if int64(len(b)) > room {
		b = b[:room]
		p.truncated(limit)
	}
	p.msg.Body = append(p.msg.Body, b...)
}

func (p *parser) truncated(limit int64) {
	if !p.msg.BodyTruncated {
		p.msg.BodyTruncated = true
		p.note(note.SubjectMessage, "BODY_TRUNCATED",
			"cap", strconv.FormatInt(limit, 10))
	}
}

// contentLength resolves possibly repeated Content-Length values. Repeats
// that agree are accepted (the analyzer still flags them); disagreement or
// non-numeric values make the header unusable for framing.
func contentLength(values []string) (int64, bool) {
	var result int64 = -1
	for _, v := range values {
		for _, member := range rfc9110.SplitList(v) {
			n, err := strconv.ParseInt(member, 10, 64)
			if err != nil || n < 0 {
				return 0, false
			}
			if result >= 0 && n != result {
				return 0, false
			}
			result = n
		}
	}
	return result, result >= 0
}

// §  6.3: responses to HEAD and 1xx/204/304 responses never have a body.
// HEAD is handled by the caller, which knows the request method.
func statusAllowsBody(code int) bool {
	if code >= 100 && code < 200 {
		return false
	}
	return code != 204 && code != 304
}

func sample(b []byte) string {
	const max = 40
	if len(b) > max {
		b = b[:max]
	}
	return strconv.Quote(string(b))
}
