// Package crosscheck derives facts that need more than one header: the
// freshness and cacheability of a response, which validators it carries,
// and — once an auxiliary fetch exists — whether its Vary behavior holds up
// between variants.
package crosscheck

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vfaronov/httpheader"

	"github.com/httpdoctor/httpdoctor/headers"
	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9111"
)

// Validator classifies the revalidation support a response advertises.
type Validator int

const (
	ValidatorNone Validator = iota
	ValidatorWeak
	ValidatorStrong
)

func (v Validator) String() string {
	switch v {
	case ValidatorNone:
		return "none"
	case ValidatorWeak:
		return "weak"
	case ValidatorStrong:
		return "strong"
	}
	return "unknown"
}

// Facts are the derived cross-header properties of one response. They are
// computed once, after header analysis, and never mutated.
type Facts struct {
	StatusCode int `json:"statusCode"`

	Freshness   rfc9111.Freshness   `json:"freshness"`
	CacheableBy rfc9111.CacheableBy `json:"cacheableBy"`
	// DecidedBy names the directive or rule behind CacheableBy.
	DecidedBy string `json:"decidedBy,omitempty"`

	Validator    Validator `json:"validator"`
	ETag         httpheader.EntityTag
	HasETag      bool      `json:"hasETag"`
	LastModified time.Time `json:"lastModified,omitempty"`
	HasModified  bool      `json:"hasLastModified"`

	Vary        []string `json:"vary,omitempty"`
	ContentType string   `json:"contentType,omitempty"`
	GzipEncoded bool     `json:"gzipEncoded"`
	RangesBytes bool     `json:"rangesBytes"`
	Location    *url.URL `json:"-"`

	// BodyDigest and BodyLength let variants be compared without
	// retaining two bodies.
	BodyDigest uint64 `json:"bodyDigest"`
	BodyLength int64  `json:"bodyLength"`
}

// Request carries the aspects of the issued request that cacheability and
// negotiation checks depend on.
type Request struct {
	Method             string
	HasAuthorization   bool
	SentAcceptEncoding bool
}

// Evaluate computes the Facts for an analyzed message. receivedAt anchors
// age calculation; now is the analysis instant.
func Evaluate(msg *message.Message, results map[string]headers.Result,
	req Request, receivedAt, now time.Time) (Facts, []note.Note) {

	var notes []note.Note
	facts := Facts{StatusCode: msg.StatusCode}
	emit := func(subject, id string, args ...string) {
		notes = append(notes, note.New(subject, id, args...))
	}

	cc, _ := typedCacheControl(results)

	// freshness
	in := rfc9111.Input{CacheControl: cc, ReceivedAt: receivedAt}
	if r, ok := results["expires"]; ok {
		in.ExpiresPresent = true
		if d, ok := r.Value.(time.Time); ok {
			in.Expires, in.ExpiresValid = d, true
		}
	}
	if r, ok := results["date"]; ok {
		if d, ok := r.Value.(time.Time); ok {
			in.Date, in.DateValid = d, true
		}
	}
	if r, ok := results["age"]; ok {
		if secs, ok := r.Value.(int64); ok {
			in.AgeSeconds, in.AgeValid = secs, true
		}
	}
	facts.Freshness = rfc9111.Compute(in, now)

	if !facts.Freshness.DateUsable {
		emit(note.HeaderSubject("Date"), "DATE_ABSENT")
	}
	if cc.Has("max-age") && in.ExpiresPresent {
		emit(note.HeaderSubject("Expires"), "EXPIRES_IGNORED")
	}
	switch {
	case !facts.Freshness.HasLifetime:
		emit(note.SubjectMessage, "FRESHNESS_NONE")
	case facts.Freshness.Stale:
		emit(note.SubjectMessage, "FRESHNESS_STALE",
			"lifetime", strconv.FormatInt(facts.Freshness.Lifetime, 10),
			"age", strconv.FormatInt(facts.Freshness.Age, 10),
			"source", facts.Freshness.Source)
	default:
		emit(note.SubjectMessage, "FRESHNESS_FRESH",
			"freshness", strconv.FormatInt(facts.Freshness.Remaining, 10),
			"lifetime", strconv.FormatInt(facts.Freshness.Lifetime, 10),
			"age", strconv.FormatInt(facts.Freshness.Age, 10),
			"source", facts.Freshness.Source)
	}

	// cacheability
	facts.CacheableBy, facts.DecidedBy = rfc9111.Cacheability(
		req.Method, msg.StatusCode, cc,
		req.HasAuthorization, facts.Freshness.HasLifetime)
	switch facts.DecidedBy {
	case "no-store":
		emit(note.HeaderSubject("Cache-Control"), "NO_STORE")
	case "method":
		emit(note.SubjectMessage, "METHOD_UNCACHEABLE", "method", req.Method)
	case "status":
		emit(note.SubjectMessage, "STATUS_UNCACHEABLE",
			"code", strconv.Itoa(msg.StatusCode))
	case "private", "authorization":
		emit(note.HeaderSubject("Cache-Control"), "CACHEABLE_PRIVATE",
			"directive", facts.DecidedBy)
	default:
		emit(note.SubjectMessage, "CACHEABLE_SHARED")
	}

	// validators
	if r, ok := results["etag"]; ok {
		if tag, ok := r.Value.(httpheader.EntityTag); ok {
			facts.ETag, facts.HasETag = tag, true
		}
	}
	if r, ok := results["last-modified"]; ok {
		if d, ok := r.Value.(time.Time); ok {
			facts.LastModified, facts.HasModified = d, true
		}
	}
	switch {
	case facts.HasETag && !facts.ETag.Weak:
		facts.Validator = ValidatorStrong
		emit(note.HeaderSubject("ETag"), "VALIDATOR_STRONG")
	case facts.HasETag:
		facts.Validator = ValidatorWeak
		emit(note.HeaderSubject("ETag"), "VALIDATOR_WEAK",
			"validator", "weak ETag")
	case facts.HasModified:
		facts.Validator = ValidatorWeak
		emit(note.HeaderSubject("Last-Modified"), "VALIDATOR_WEAK",
			"validator", "Last-Modified")
	default:
		emit(note.SubjectMessage, "VALIDATOR_NONE")
	}

	// negotiation-relevant surface
	if r, ok := results["vary"]; ok {
		if names, ok := r.Value.([]string); ok {
			facts.Vary = names
		}
	}
	if r, ok := results["content-type"]; ok {
		if mt, ok := r.Value.(headers.MediaType); ok {
			facts.ContentType = mt.String()
		}
	}
	if r, ok := results["content-encoding"]; ok {
		if codings, ok := r.Value.([]string); ok {
			for _, c := range codings {
				if c == "gzip" || c == "x-gzip" {
					facts.GzipEncoded = true
				}
			}
		}
	}
	if r, ok := results["accept-ranges"]; ok {
		if units, ok := r.Value.([]string); ok {
			for _, u := range units {
				if u == "bytes" {
					facts.RangesBytes = true
				}
			}
		}
	}
	if r, ok := results["location"]; ok {
		if u, ok := r.Value.(*url.URL); ok {
			facts.Location = u
		}
	}

	facts.BodyDigest = xxhash.Sum64(msg.Body)
	facts.BodyLength = msg.BodyLength

	if facts.GzipEncoded && !req.SentAcceptEncoding {
		emit(note.HeaderSubject("Content-Encoding"),
			"CONNEG_GZIP_WITHOUT_ASKING")
	}

	return facts, notes
}

func typedCacheControl(results map[string]headers.Result) (headers.CacheControl, bool) {
	if r, ok := results["cache-control"]; ok {
		if cc, ok := r.Value.(headers.CacheControl); ok {
			return cc, true
		}
	}
	return headers.CacheControl{}, false
}

func varyList(v []string) string {
	if len(v) == 0 {
		return "(none)"
	}
	return strings.Join(v, ", ")
}
