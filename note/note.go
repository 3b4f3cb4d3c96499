// Package note holds the diagnostic model: a Note is a single finding about
// an HTTP exchange, tied to a severity level and a specification citation.
package note

import (
	"fmt"
	"strings"
)

// Severity classifies how a finding should be read.
type Severity int

const (
	Good Severity = iota
	Info
	Warning
	Bad
)

func (s Severity) String() string {
	switch s {
	case Good:
		return "good"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Bad:
		return "bad"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// SubjectMessage marks a Note as being about the exchange as a whole
// rather than a single header field.
const SubjectMessage = ""

// HeaderSubject returns the subject string for a note about one header.
func HeaderSubject(name string) string {
	return "header-" + strings.ToLower(name)
}

// Note is one diagnostic finding. Notes are immutable once created;
// consumers only ever append them to lists.
type Note struct {
	ID       string            `json:"id"`
	Severity Severity          `json:"severity"`
	Subject  string            `json:"subject,omitempty"`
	Args     map[string]string `json:"args,omitempty"`
	Ref      string            `json:"ref,omitempty"`
}

// New creates a Note from a registered template.
// Unknown template IDs panic: they are programming errors, caught by the
// catalog coverage test.
func New(subject, id string, args ...string) Note {
	tpl, ok := catalog[id]
	if !ok {
		panic(fmt.Sprintf("note: no template registered for %q", id))
	}
	if len(args)%2 != 0 {
		panic(fmt.Sprintf("note: odd argument count for %q", id))
	}
	var m map[string]string
	if len(args) > 0 {
		m = make(map[string]string, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			m[args[i]] = args[i+1]
		}
	}
	return Note{
		ID:       id,
		Severity: tpl.Severity,
		Subject:  subject,
		Args:     m,
		Ref:      tpl.Ref,
	}
}

// Summary renders the note's one-line summary with its arguments
// substituted.
func (n Note) Summary() string {
	tpl, ok := catalog[n.ID]
	if !ok {
		return n.ID
	}
	return expand(tpl.Summary, n.Args)
}

// Text renders the note's longer explanation, if the template has one.
func (n Note) Text() string {
	tpl, ok := catalog[n.ID]
	if !ok {
		return ""
	}
	return expand(tpl.Text, n.Args)
}

// HeaderName returns the header a note is about, or "" for message-level
// notes.
func (n Note) HeaderName() string {
	return strings.TrimPrefix(n.Subject, "header-")
}

// expand substitutes {arg} placeholders. Placeholders with no matching
// argument are left as-is so broken templates are visible in output.
func expand(s string, args map[string]string) string {
	if len(args) == 0 || !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
