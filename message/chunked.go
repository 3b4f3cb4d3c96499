package message

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/httpdoctor/httpdoctor/note"
)

// §  7.1.  Chunked Transfer Coding (RFC 9112)
// §
// §    chunked-body   = *chunk
// §                     last-chunk
// §                     trailer-section
// §                     CRLF
// §
// §    chunk          = chunk-size [ chunk-ext ] CRLF
// §                     chunk-data CRLF
// §    chunk-size     = 1*HEXDIG
// §    last-chunk     = 1*("0") [ chunk-ext ] CRLF
//
// A malformed chunk-size line stops decoding with a BAD_CHUNK note rather
// than an error: the partial body is still worth diagnosing.
func (p *parser) parseChunkedBody() error {
	for {
		line, _, ok := p.readLine()
		if !ok {
			p.note(note.SubjectMessage, "BODY_INCOMPLETE",
				"declared", "chunked", "received",
				strconv.FormatInt(p.msg.BodyLength, 10))
			return nil
		}
		// chunk extensions are accepted and ignored
		sizeStr := line
		if semi := strings.IndexByte(line, ';'); semi >= 0 {
			sizeStr = strings.TrimRight(line[:semi], " \t")
		}
		size, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil || size < 0 {
			p.note(note.SubjectMessage, "BAD_CHUNK",
				"chunk_sample", sample([]byte(line)))
			return nil
		}
		if size == 0 {
			p.skipTrailers()
			return nil
		}
		data := p.raw[p.pos:]
		if int64(len(data)) < size {
			p.captureBody(data)
			p.pos = len(p.raw)
			p.note(note.SubjectMessage, "BODY_INCOMPLETE",
				"declared", "chunked", "received",
				strconv.FormatInt(p.msg.BodyLength, 10))
			return nil
		}
		p.captureBody(data[:size])
		p.pos += int(size)
		// the CRLF after chunk-data
		if !p.consumeCRLF() {
			p.note(note.SubjectMessage, "BAD_CHUNK",
				"chunk_sample", sample(p.raw[p.pos:]))
			return nil
		}
	}
}

// skipTrailers consumes the trailer section and final CRLF. Trailer fields
// are not analyzed; anything after them is extra data.
func (p *parser) skipTrailers() {
	for {
		line, _, ok := p.readLine()
		if !ok || line == "" {
			break
		}
	}
	if p.pos < len(p.raw) {
		p.note(note.SubjectMessage, "EXTRA_DATA",
			"sample", sample(p.raw[p.pos:]))
	}
}

func (p *parser) consumeCRLF() bool {
	rest := p.raw[p.pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		p.pos += 2
		return true
	case bytes.HasPrefix(rest, []byte("\n")):
		p.pos++
		return true
	case len(rest) == 0:
		// input ended exactly at the chunk boundary; BODY_INCOMPLETE
		// will be raised on the next chunk-size read.
		return true
	}
	return false
}
