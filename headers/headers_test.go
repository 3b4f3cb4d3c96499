package headers

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vfaronov/httpheader"
)

func TestETagStrong(t *testing.T) {
	r := Analyze("ETag", []string{`"abc123"`}, nil)
	tag, ok := r.Value.(httpheader.EntityTag)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if tag.Weak || tag.Opaque != "abc123" {
		t.Fatalf("tag: %+v", tag)
	}
}

func TestETagWeak(t *testing.T) {
	r := Analyze("ETag", []string{`W/"v1"`}, nil)
	tag := r.Value.(httpheader.EntityTag)
	if !tag.Weak || tag.Opaque != "v1" {
		t.Fatalf("tag: %+v", tag)
	}
}

func TestETagUnquoted(t *testing.T) {
	r := Analyze("ETag", []string{"abc123"}, nil)
	if r.Value != nil {
		t.Fatalf("value %v", r.Value)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "ETAG_BAD_SYNTAX" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestContentLength(t *testing.T) {
	r := Analyze("Content-Length", []string{"1234"}, nil)
	if r.Value != int64(1234) || len(r.Notes) != 0 {
		t.Fatalf("value %v, notes %v", r.Value, r.Notes)
	}
}

func TestContentLengthAgreeingRepeats(t *testing.T) {
	r := Analyze("Content-Length", []string{"5", "5"}, nil)
	if r.Value != int64(5) {
		t.Fatalf("value %v", r.Value)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "FIELD_SINGLETON_REPEATED" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestContentLengthConflict(t *testing.T) {
	r := Analyze("Content-Length", []string{"5", "6"}, nil)
	if r.Value != nil {
		t.Fatalf("value %v", r.Value)
	}
	found := false
	for _, n := range r.Notes {
		if n.ID == "CL_CONFLICTING_VALUES" {
			found = true
		}
	}
	if !found {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestContentType(t *testing.T) {
	r := Analyze("Content-Type", []string{"Text/HTML; charset=UTF-8"}, nil)
	mt, ok := r.Value.(MediaType)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if mt.Type != "text" || mt.Subtype != "html" {
		t.Fatalf("media type: %+v", mt)
	}
	if mt.Params["charset"] != "UTF-8" {
		t.Fatalf("params: %v", mt.Params)
	}
	if mt.String() != "text/html" {
		t.Fatalf("String: %q", mt.String())
	}
}

func TestContentTypeBad(t *testing.T) {
	r := Analyze("Content-Type", []string{"nosubtype"}, nil)
	if r.Value != nil || len(r.Notes) != 1 || r.Notes[0].ID != "CT_BAD_SYNTAX" {
		t.Fatalf("value %v, notes %v", r.Value, r.Notes)
	}
}

func TestVary(t *testing.T) {
	r := Analyze("Vary", []string{"Accept-Encoding, User-Agent"}, nil)
	got := r.Value.([]string)
	if !reflect.DeepEqual(got, []string{"accept-encoding", "user-agent"}) {
		t.Fatalf("value %v", got)
	}
}

func TestVaryStar(t *testing.T) {
	r := Analyze("Vary", []string{"*"}, nil)
	if len(r.Notes) != 1 || r.Notes[0].ID != "VARY_STAR" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestDateHeader(t *testing.T) {
	r := Analyze("Date", []string{"Sun, 06 Nov 1994 08:49:37 GMT"}, nil)
	date, ok := r.Value.(time.Time)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if date.Year() != 1994 || len(r.Notes) != 0 {
		t.Fatalf("date %v, notes %v", date, r.Notes)
	}
}

func TestDateObsolete(t *testing.T) {
	r := Analyze("Date", []string{"Sunday, 06-Nov-94 08:49:37 GMT"}, nil)
	if _, ok := r.Value.(time.Time); !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "DATE_OBSOLETE_FORMAT" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestDateInvalid(t *testing.T) {
	r := Analyze("Expires", []string{"0"}, nil)
	if r.Value != nil {
		t.Fatalf("value %v", r.Value)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "BAD_DATE_SYNTAX" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestLastModifiedFuture(t *testing.T) {
	future := time.Now().Add(48 * time.Hour).UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
	r := Analyze("Last-Modified", []string{future}, nil)
	found := false
	for _, n := range r.Notes {
		if n.ID == "LM_FUTURE" {
			found = true
		}
	}
	if !found {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestLastModifiedFutureInjectedClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	a := dateAnalyzer{name: "Last-Modified", checkFuture: true, clock: mock}

	_, notes := a.Analyze([]string{"Sat, 01 Jun 2024 13:00:00 GMT"}, nil)
	if len(notes) != 1 || notes[0].ID != "LM_FUTURE" {
		t.Fatalf("notes: %v", notes)
	}
	_, notes = a.Analyze([]string{"Sat, 01 Jun 2024 11:00:00 GMT"}, nil)
	if len(notes) != 0 {
		t.Fatalf("notes: %v", notes)
	}
}

func TestAge(t *testing.T) {
	r := Analyze("Age", []string{"40"}, nil)
	if r.Value != int64(40) {
		t.Fatalf("value %v", r.Value)
	}
}

func TestAgeInvalid(t *testing.T) {
	r := Analyze("Age", []string{"soon"}, nil)
	if r.Value != nil || len(r.Notes) != 1 || r.Notes[0].ID != "AGE_NOT_INT" {
		t.Fatalf("value %v, notes %v", r.Value, r.Notes)
	}
}

func TestLocation(t *testing.T) {
	r := Analyze("Location", []string{"/other/place"}, nil)
	u, ok := r.Value.(*url.URL)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if u.Path != "/other/place" {
		t.Fatalf("url %v", u)
	}
}

func TestRetryAfter(t *testing.T) {
	r := Analyze("Retry-After", []string{"120"}, nil)
	ra := r.Value.(RetryAfter)
	if ra.Seconds != 120 {
		t.Fatalf("value %+v", ra)
	}

	r = Analyze("Retry-After", []string{"Sun, 06 Nov 1994 08:49:37 GMT"}, nil)
	ra = r.Value.(RetryAfter)
	if ra.Date.IsZero() {
		t.Fatalf("value %+v", ra)
	}

	r = Analyze("Retry-After", []string{"whenever"}, nil)
	if r.Value != nil || r.Notes[0].ID != "RETRY_AFTER_BAD" {
		t.Fatalf("value %v, notes %v", r.Value, r.Notes)
	}
}

func TestAcceptRanges(t *testing.T) {
	r := Analyze("Accept-Ranges", []string{"bytes"}, nil)
	if got := r.Value.([]string); !reflect.DeepEqual(got, []string{"bytes"}) {
		t.Fatalf("value %v", got)
	}

	r = Analyze("Accept-Ranges", []string{"pages"}, nil)
	if len(r.Notes) != 1 || r.Notes[0].ID != "RANGES_UNKNOWN_UNIT" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestTransferEncodingChunkedNotLast(t *testing.T) {
	r := Analyze("Transfer-Encoding", []string{"chunked, gzip"}, nil)
	found := false
	for _, n := range r.Notes {
		if n.ID == "TE_CHUNKED_NOT_LAST" {
			found = true
		}
	}
	if !found {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestContentEncodingUnknown(t *testing.T) {
	r := Analyze("Content-Encoding", []string{"snappy"}, nil)
	if len(r.Notes) != 1 || r.Notes[0].ID != "CE_UNKNOWN_CODING" {
		t.Fatalf("notes: %v", r.Notes)
	}
	if got := r.Value.([]string); got[0] != "snappy" {
		t.Fatalf("value %v", got)
	}
}

func TestSetCookiePerLine(t *testing.T) {
	r := Analyze("Set-Cookie", []string{
		"session=abc; Path=/; HttpOnly",
		"theme=dark",
	}, nil)
	cookies, ok := r.Value.([]SetCookie)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	if len(cookies) != 2 {
		t.Fatalf("%d cookies", len(cookies))
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc" {
		t.Fatalf("cookie: %+v", cookies[0])
	}
	if _, ok := cookies[0].Attrs["httponly"]; !ok {
		t.Fatalf("attrs: %v", cookies[0].Attrs)
	}
}

func TestSetCookieBad(t *testing.T) {
	r := Analyze("Set-Cookie", []string{"no cookie here"}, nil)
	if r.Value != nil || len(r.Notes) != 1 || r.Notes[0].ID != "SET_COOKIE_BAD" {
		t.Fatalf("value %v, notes %v", r.Value, r.Notes)
	}
}

func TestDeprecatedHeaders(t *testing.T) {
	for _, name := range []string{"Pragma", "Warning"} {
		r := Analyze(name, []string{"no-cache"}, nil)
		if len(r.Notes) != 1 || r.Notes[0].ID != "HEADER_DEPRECATED" {
			t.Fatalf("%s notes: %v", name, r.Notes)
		}
	}
}
