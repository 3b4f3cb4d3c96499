package httpdoctor

import (
	"time"

	"github.com/httpdoctor/httpdoctor/crosscheck"
	"github.com/httpdoctor/httpdoctor/headers"
	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
)

// RelationKind classifies an auxiliary fetch relative to its parent.
type RelationKind string

const (
	RelationRedirect    RelationKind = "redirect-target"
	RelationConditional RelationKind = "conditional-retry"
	RelationRange       RelationKind = "range-retry"
	RelationConneg      RelationKind = "conneg-retry"
)

// Diagnosis is the complete analysis result for one fetched resource.
// It is built up by the orchestrator and frozen before being linked into a
// parent or returned; afterwards it is read-only.
type Diagnosis struct {
	URI    string `json:"uri"`
	Method string `json:"method"`

	// Message is nil when the fetch failed at the transport level.
	Message *message.Message          `json:"message,omitempty"`
	Results map[string]headers.Result `json:"results,omitempty"`
	Notes   []note.Note               `json:"notes"`
	Facts   crosscheck.Facts          `json:"facts"`

	Related map[RelationKind]*Diagnosis `json:"related,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`

	frozen bool
}

// state tracks a diagnosis through its lifecycle. Transitions are strictly
// forward; the terminal state is reached exactly once.
type state int

const (
	stateFetching state = iota
	stateParsed
	stateAnalyzed
	stateDone
)

func (s state) String() string {
	switch s {
	case stateFetching:
		return "fetching"
	case stateParsed:
		return "parsed"
	case stateAnalyzed:
		return "analyzed"
	case stateDone:
		return "done"
	}
	return "unknown"
}

func (d *Diagnosis) addNotes(notes ...note.Note) {
	if d.frozen {
		panic("httpdoctor: note added to frozen diagnosis")
	}
	d.Notes = append(d.Notes, notes...)
}

// link attaches a completed related diagnosis under its relation kind.
func (d *Diagnosis) link(kind RelationKind, related *Diagnosis) {
	if d.frozen {
		panic("httpdoctor: relation added to frozen diagnosis")
	}
	if !related.frozen {
		panic("httpdoctor: linking unfrozen diagnosis")
	}
	if d.Related == nil {
		d.Related = make(map[RelationKind]*Diagnosis)
	}
	d.Related[kind] = related
}

func (d *Diagnosis) freeze() { d.frozen = true }

// Severest returns the worst severity among the diagnosis's notes.
func (d *Diagnosis) Severest() note.Severity {
	worst := note.Good
	for _, n := range d.Notes {
		if n.Severity > worst {
			worst = n.Severity
		}
	}
	return worst
}
