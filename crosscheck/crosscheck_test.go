package crosscheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpdoctor/httpdoctor/headers"
	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9111"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func evaluate(t *testing.T, raw string, req Request) (Facts, []note.Note) {
	t.Helper()
	msg, _, err := message.ParseResponse([]byte(raw), message.Options{})
	require.NoError(t, err)
	results, _ := headers.AnalyzeAll(msg)
	return Evaluate(msg, results, req, testNow, testNow)
}

func noteIDs(notes []note.Note) []string {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestEvaluateFreshCacheable(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Cache-Control: max-age=100\r\n"+
		"Age: 40\r\n"+
		"ETag: \"v1\"\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.Equal(t, int64(60), facts.Freshness.Remaining)
	assert.Equal(t, rfc9111.CacheableShared, facts.CacheableBy)
	assert.Equal(t, ValidatorStrong, facts.Validator)

	ids := noteIDs(notes)
	assert.Contains(t, ids, "FRESHNESS_FRESH")
	assert.Contains(t, ids, "CACHEABLE_SHARED")
	assert.Contains(t, ids, "VALIDATOR_STRONG")
	assert.NotContains(t, ids, "DATE_ABSENT")
}

func TestEvaluateStale(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Cache-Control: max-age=30\r\n"+
		"Age: 40\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.True(t, facts.Freshness.Stale)
	assert.Zero(t, facts.Freshness.Remaining)
	assert.Contains(t, noteIDs(notes), "FRESHNESS_STALE")
}

func TestEvaluateMissingDate(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Cache-Control: max-age=100\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.False(t, facts.Freshness.DateUsable)
	assert.Contains(t, noteIDs(notes), "DATE_ABSENT")
}

func TestEvaluateExpiresIgnored(t *testing.T) {
	_, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Cache-Control: max-age=100\r\n"+
		"Expires: Sat, 01 Jun 2024 13:00:00 GMT\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.Contains(t, noteIDs(notes), "EXPIRES_IGNORED")
}

func TestEvaluateNoStore(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Cache-Control: no-store\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.Equal(t, rfc9111.CacheableNone, facts.CacheableBy)
	assert.Contains(t, noteIDs(notes), "NO_STORE")
}

func TestEvaluateWeakValidator(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Last-Modified: Sat, 01 Jun 2024 11:00:00 GMT\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.Equal(t, ValidatorWeak, facts.Validator)
	assert.True(t, facts.HasModified)
	assert.Contains(t, noteIDs(notes), "VALIDATOR_WEAK")
}

func TestEvaluateNoValidator(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET"})

	assert.Equal(t, ValidatorNone, facts.Validator)
	assert.Contains(t, noteIDs(notes), "VALIDATOR_NONE")
}

func TestEvaluateNegotiationSurface(t *testing.T) {
	facts, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"Content-Encoding: gzip\r\n"+
		"Vary: Accept-Encoding\r\n"+
		"Accept-Ranges: bytes\r\n"+
		"Content-Length: 2\r\n"+
		"\r\n"+
		"xx", Request{Method: "GET", SentAcceptEncoding: false})

	assert.True(t, facts.GzipEncoded)
	assert.True(t, facts.RangesBytes)
	assert.Equal(t, "text/html", facts.ContentType)
	assert.Equal(t, []string{"accept-encoding"}, facts.Vary)
	assert.Contains(t, noteIDs(notes), "CONNEG_GZIP_WITHOUT_ASKING")
}

func TestEvaluateGzipAskedFor(t *testing.T) {
	_, notes := evaluate(t, "HTTP/1.1 200 OK\r\n"+
		"Date: Sat, 01 Jun 2024 12:00:00 GMT\r\n"+
		"Content-Encoding: gzip\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n", Request{Method: "GET", SentAcceptEncoding: true})

	assert.NotContains(t, noteIDs(notes), "CONNEG_GZIP_WITHOUT_ASKING")
}

func TestEvaluateBodyDigest(t *testing.T) {
	a, _ := evaluate(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello",
		Request{Method: "GET"})
	b, _ := evaluate(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello",
		Request{Method: "GET"})
	c, _ := evaluate(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nworld",
		Request{Method: "GET"})

	assert.Equal(t, a.BodyDigest, b.BodyDigest)
	assert.NotEqual(t, a.BodyDigest, c.BodyDigest)
	assert.Equal(t, int64(5), a.BodyLength)
}
