// Package headers analyzes individual header fields. Each known header name
// has one analyzer that owns its combination rule for repeated fields, its
// syntax, and its single-header semantic checks; anything involving a second
// header belongs in package crosscheck.
package headers

import (
	"sort"
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
)

// Analyzer turns the raw field values for one header name into a typed
// value and findings. Analyzers are pure: they may read the Message but
// never other analyzers' results.
type Analyzer interface {
	// CanonicalName is the header name in its registered capitalization.
	CanonicalName() string
	// Analyze consumes all field lines for this name, in received order.
	// A nil typed value means the header could not be parsed.
	Analyze(values []string, msg *message.Message) (typed interface{}, notes []note.Note)
}

// Result is the analysis outcome for one header name.
type Result struct {
	// Name is the canonical name for registered headers, or the name as
	// received for unknown ones.
	Name string `json:"name"`
	// Value is the parsed representation; nil when parsing failed.
	Value interface{} `json:"value,omitempty"`
	// Recognized is false when the generic fallback handled the header.
	Recognized bool `json:"recognized"`

	Notes []note.Note `json:"notes,omitempty"`
}

// The registry is populated by init functions in this package and is
// read-only afterwards.
var registry = map[string]Analyzer{}

func register(a Analyzer) {
	key := strings.ToLower(a.CanonicalName())
	if _, dup := registry[key]; dup {
		panic("headers: duplicate analyzer for " + a.CanonicalName())
	}
	registry[key] = a
}

// Lookup finds the analyzer for a header name, case-insensitively.
func Lookup(name string) (Analyzer, bool) {
	a, ok := registry[strings.ToLower(name)]
	return a, ok
}

// KnownNames lists all registered canonical header names, sorted.
func KnownNames() []string {
	names := make([]string, 0, len(registry))
	for _, a := range registry {
		names = append(names, a.CanonicalName())
	}
	sort.Strings(names)
	return names
}

// Analyze runs the registered analyzer for name (or the generic fallback)
// over the given field values.
func Analyze(name string, values []string, msg *message.Message) Result {
	if a, ok := Lookup(name); ok {
		typed, notes := a.Analyze(values, msg)
		return Result{
			Name:       a.CanonicalName(),
			Value:      typed,
			Recognized: true,
			Notes:      notes,
		}
	}
	typed, notes := genericAnalyze(name, values)
	return Result{Name: name, Value: typed, Notes: notes}
}

// AnalyzeAll analyzes every header of the message. Results are keyed by
// lowercased name; the returned notes follow header field order, which
// keeps output deterministic regardless of how analyzers run.
func AnalyzeAll(msg *message.Message) (map[string]Result, []note.Note) {
	results := make(map[string]Result)
	var notes []note.Note
	for _, name := range msg.FieldNames() {
		r := Analyze(name, msg.Values(name), msg)
		results[strings.ToLower(name)] = r
		notes = append(notes, r.Notes...)
	}
	return results, notes
}
