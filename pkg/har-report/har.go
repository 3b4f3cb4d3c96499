// Package harreport renders a diagnosis tree as an HTTP Archive (HAR)
// document, with the findings carried in a _notes extension field per
// entry.
package harreport

import (
	"encoding/json"
	"time"

	httpdoctor "github.com/httpdoctor/httpdoctor"
	"github.com/httpdoctor/httpdoctor/note"
)

const version = "1.2"

// Report is the root of a HAR document.
type Report struct {
	Log Log `json:"log"`
}

type Log struct {
	Version string  `json:"version"`
	Creator Creator `json:"creator"`
	Pages   []Page  `json:"pages"`
	Entries []Entry `json:"entries"`
}

type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Page struct {
	StartedDateTime string      `json:"startedDateTime"`
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	PageTimings     PageTimings `json:"pageTimings"`
}

type PageTimings struct {
	OnContentLoad int `json:"onContentLoad"`
	OnLoad        int `json:"onLoad"`
}

type Entry struct {
	PageRef         string       `json:"pageref,omitempty"`
	StartedDateTime string       `json:"startedDateTime"`
	Time            int          `json:"time"`
	Request         Request      `json:"request"`
	Response        Response     `json:"response"`
	Cache           struct{}     `json:"cache"`
	Timings         Timings      `json:"timings"`
	Relation        string       `json:"_relation,omitempty"`
	Notes           []NoteRecord `json:"_notes"`
}

type Request struct {
	Method      string          `json:"method"`
	URL         string          `json:"url"`
	HTTPVersion string          `json:"httpVersion"`
	Cookies     []struct{}      `json:"cookies"`
	Headers     []NameValuePair `json:"headers"`
	QueryString []NameValuePair `json:"queryString"`
	HeadersSize int             `json:"headersSize"`
	BodySize    int             `json:"bodySize"`
}

type Response struct {
	Status      int             `json:"status"`
	StatusText  string          `json:"statusText"`
	HTTPVersion string          `json:"httpVersion"`
	Cookies     []struct{}      `json:"cookies"`
	Headers     []NameValuePair `json:"headers"`
	Content     Content         `json:"content"`
	RedirectURL string          `json:"redirectURL"`
	HeadersSize int             `json:"headersSize"`
	BodySize    int64           `json:"bodySize"`
}

type Content struct {
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type Timings struct {
	Blocked int `json:"blocked"`
	DNS     int `json:"dns"`
	Connect int `json:"connect"`
	Send    int `json:"send"`
	Wait    int `json:"wait"`
	Receive int `json:"receive"`
}

type NameValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NoteRecord is one finding, flattened for the report.
type NoteRecord struct {
	Subject  string `json:"subject,omitempty"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Ref      string `json:"ref,omitempty"`
}

// FromDiagnosis builds a Report for a diagnosis and its related fetches.
func FromDiagnosis(d *httpdoctor.Diagnosis) *Report {
	r := &Report{Log: Log{
		Version: version,
		Creator: Creator{Name: "httpdoctor", Version: "1.0"},
		Pages: []Page{{
			StartedDateTime: isoformat(d.FetchedAt),
			ID:              "page1",
			PageTimings:     PageTimings{OnContentLoad: -1, OnLoad: -1},
		}},
		Entries: []Entry{},
	}}
	r.addEntry(d, "")
	return r
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (r *Report) addEntry(d *httpdoctor.Diagnosis, relation string) {
	entry := Entry{
		PageRef:         "page1",
		StartedDateTime: isoformat(d.FetchedAt),
		Time:            -1,
		Relation:        relation,
		Request: Request{
			Method:      d.Method,
			URL:         d.URI,
			HTTPVersion: "HTTP/1.1",
			Headers:     []NameValuePair{},
			QueryString: []NameValuePair{},
			HeadersSize: -1,
			BodySize:    -1,
		},
		Timings: Timings{Blocked: -1, DNS: -1, Connect: -1, Wait: -1, Receive: -1},
		Notes:   notes(d.Notes),
	}
	if msg := d.Message; msg != nil {
		entry.Response = Response{
			Status:      msg.StatusCode,
			StatusText:  msg.ReasonPhrase,
			HTTPVersion: msg.Version,
			Headers:     headerPairs(d),
			Content: Content{
				Size:     msg.BodyLength,
				MimeType: d.Facts.ContentType,
			},
			RedirectURL: redirectURL(d),
			HeadersSize: msg.HeaderLength,
			BodySize:    msg.BodyLength,
		}
	}
	r.Log.Entries = append(r.Log.Entries, entry)

	for _, kind := range []httpdoctor.RelationKind{
		httpdoctor.RelationRedirect,
		httpdoctor.RelationConditional,
		httpdoctor.RelationRange,
		httpdoctor.RelationConneg,
	} {
		if child, ok := d.Related[kind]; ok {
			r.addEntry(child, string(kind))
		}
	}
}

func headerPairs(d *httpdoctor.Diagnosis) []NameValuePair {
	pairs := make([]NameValuePair, 0, len(d.Message.Fields))
	for _, f := range d.Message.Fields {
		pairs = append(pairs, NameValuePair{Name: f.Name, Value: f.Value})
	}
	return pairs
}

func redirectURL(d *httpdoctor.Diagnosis) string {
	if d.Facts.Location != nil {
		return d.Facts.Location.String()
	}
	return ""
}

func notes(ns []note.Note) []NoteRecord {
	records := make([]NoteRecord, 0, len(ns))
	for _, n := range ns {
		records = append(records, NoteRecord{
			Subject:  n.Subject,
			Severity: n.Severity.String(),
			Summary:  n.Summary(),
			Ref:      n.Ref,
		})
	}
	return records
}

func isoformat(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
