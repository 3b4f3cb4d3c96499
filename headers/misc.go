package headers

import (
	"net/url"
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// §  5.1.  Age (RFC 9111): Age = delta-seconds. A list-based value SHOULD
// §  use the first member; an invalid value means the field is ignored.
type ageAnalyzer struct{}

func init() { register(ageAnalyzer{}) }

func (ageAnalyzer) CanonicalName() string { return "Age" }

func (ageAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Age")
	value := singleton("Age", values, ns)
	if members := rfc9110.SplitList(value); len(members) > 0 {
		value = members[0]
	}
	seconds, ok := rfc9110.DeltaSeconds(value)
	if !ok {
		ns.add("AGE_NOT_INT", "value", value)
		return nil, ns.notes
	}
	return seconds, ns.notes
}

// §  12.5.5.  Vary (RFC 9110): Vary = #( "*" / field-name )
type varyAnalyzer struct{}

func init() { register(varyAnalyzer{}) }

func (varyAnalyzer) CanonicalName() string { return "Vary" }

func (varyAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Vary")
	var names []string
	for _, member := range listMembers(values) {
		if member == "*" {
			ns.add("VARY_STAR")
			names = append(names, "*")
			continue
		}
		if !rfc9110.IsToken(member) {
			ns.add("VARY_BAD_NAME", "value", member)
			continue
		}
		names = append(names, strings.ToLower(member))
	}
	return names, ns.notes
}

// §  10.2.2.  Location (RFC 9110): a URI reference, resolved against the
// §  target URI by the recipient.
type locationAnalyzer struct{}

func init() { register(locationAnalyzer{}) }

func (locationAnalyzer) CanonicalName() string { return "Location" }

func (locationAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Location")
	value := singleton("Location", values, ns)
	u, err := url.Parse(value)
	if err != nil {
		ns.add("LOCATION_PARSE", "value", value)
		return nil, ns.notes
	}
	return u, ns.notes
}

// §  10.2.1.  Allow (RFC 9110): Allow = #method
type allowAnalyzer struct{}

func init() { register(allowAnalyzer{}) }

func (allowAnalyzer) CanonicalName() string { return "Allow" }

func (allowAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Allow")
	var methods []string
	for _, member := range listMembers(values) {
		if !rfc9110.IsToken(member) {
			ns.add("ALLOW_BAD_METHOD", "value", member)
			continue
		}
		methods = append(methods, member)
	}
	return methods, ns.notes
}

// §  14.3.  Accept-Ranges (RFC 9110): a list of range units; only "bytes"
// §  (and the reserved "none") are registered.
type acceptRangesAnalyzer struct{}

func init() { register(acceptRangesAnalyzer{}) }

func (acceptRangesAnalyzer) CanonicalName() string { return "Accept-Ranges" }

func (acceptRangesAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Accept-Ranges")
	var units []string
	for _, member := range listMembers(values) {
		unit := strings.ToLower(member)
		if unit != "bytes" && unit != "none" {
			ns.add("RANGES_UNKNOWN_UNIT", "unit", member)
		}
		units = append(units, unit)
	}
	return units, ns.notes
}

// Server carries no structure worth typing beyond its product string.
type serverAnalyzer struct{}

func init() { register(serverAnalyzer{}) }

func (serverAnalyzer) CanonicalName() string { return "Server" }

func (serverAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Server")
	return singleton("Server", values, ns), ns.notes
}
