package headers

import (
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// §  5.2.  Cache-Control (RFC 9111)
// §
// §    Cache-Control   = #cache-directive
// §    cache-directive = token [ "=" ( token / quoted-string ) ]
// §
// §  Cache directives are identified by a token, to be compared
// §  case-insensitively, and have an optional argument.

// CacheControl is the parsed directive set. The first occurrence of a
// repeated directive wins, per RFC 9111's guidance for conflicts.
type CacheControl struct {
	directives map[string]string
}

func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

func (c CacheControl) Has(directive string) bool {
	_, ok := c.directives[directive]
	return ok
}

// Seconds returns a delta-seconds directive's value.
func (c CacheControl) Seconds(directive string) (int64, bool) {
	val, ok := c.directives[directive]
	if !ok {
		return 0, false
	}
	return rfc9110.DeltaSeconds(val)
}

// deltaDirectives take a non-negative integer argument; anything else is
// invalid freshness information, which caches treat as stale.
var deltaDirectives = map[string]bool{
	"max-age":                true,
	"s-maxage":               true,
	"stale-while-revalidate": true,
	"stale-if-error":         true,
}

type cacheControlAnalyzer struct{}

func init() { register(cacheControlAnalyzer{}) }

func (cacheControlAnalyzer) CanonicalName() string { return "Cache-Control" }

func (cacheControlAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Cache-Control")
	directives := make(map[string]string)
	for _, member := range listMembers(values) {
		name, arg, hasArg := strings.Cut(member, "=")
		name = strings.TrimSpace(name)
		lower := strings.ToLower(name)
		if !rfc9110.IsToken(name) {
			ns.add("BAD_SYNTAX", "field_name", "Cache-Control", "value", member)
			continue
		}
		if name != lower {
			ns.add("CC_MISCAPITALIZED", "directive", name)
		}
		if hasArg {
			arg = rfc9110.Unquote(strings.TrimSpace(arg))
		}
		if _, dup := directives[lower]; dup {
			ns.add("CC_DUPLICATE_DIRECTIVE", "directive", lower)
			continue
		}
		if deltaDirectives[lower] {
			if _, ok := rfc9110.DeltaSeconds(arg); !ok {
				ns.add("CC_DIRECTIVE_BAD_ARG",
					"directive", lower, "value", arg)
				continue
			}
		}
		directives[lower] = arg
	}
	return CacheControl{directives}, ns.notes
}
