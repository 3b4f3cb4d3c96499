package headers

import (
	"strconv"

	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// noteList collects notes for one header under its subject.
type noteList struct {
	subject string
	notes   []note.Note
}

func notesFor(name string) *noteList {
	return &noteList{subject: note.HeaderSubject(name)}
}

func (n *noteList) add(id string, args ...string) {
	n.notes = append(n.notes, note.New(n.subject, id, args...))
}

// listMembers applies the default list combination rule: each field line is
// a comma-separated list and repeated lines extend it in order.
func listMembers(values []string) []string {
	var members []string
	for _, v := range values {
		members = append(members, rfc9110.SplitList(v)...)
	}
	return members
}

// singleton applies the rule for headers defined as a single field: the
// first occurrence wins and repeats are flagged.
func singleton(name string, values []string, ns *noteList) string {
	if len(values) > 1 {
		ns.add("FIELD_SINGLETON_REPEATED",
			"field_name", name,
			"count", strconv.Itoa(len(values)))
	}
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
