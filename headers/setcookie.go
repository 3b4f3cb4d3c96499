package headers

import (
	"strings"

	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
	"github.com/httpdoctor/httpdoctor/rfc9110"
)

// SetCookie is one parsed Set-Cookie field.
type SetCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Attrs holds attribute names (lowercased) to values, e.g.
	// "max-age" -> "3600", "secure" -> "".
	Attrs map[string]string `json:"attrs,omitempty"`
}

// §  Set-Cookie (RFC 6265) is the canonical exception to the list
// §  combination rule: each field line is one cookie, and folding lines
// §  together with commas corrupts Expires attributes.
type setCookieAnalyzer struct{}

func init() { register(setCookieAnalyzer{}) }

func (setCookieAnalyzer) CanonicalName() string { return "Set-Cookie" }

func (setCookieAnalyzer) Analyze(values []string, _ *message.Message) (interface{}, []note.Note) {
	ns := notesFor("Set-Cookie")
	cookies := make([]SetCookie, 0, len(values))
	for _, value := range values {
		parts := strings.Split(value, ";")
		name, val, ok := strings.Cut(parts[0], "=")
		name = strings.TrimSpace(name)
		if !ok || !rfc9110.IsToken(name) {
			ns.add("SET_COOKIE_BAD", "value", value)
			continue
		}
		c := SetCookie{Name: name, Value: strings.TrimSpace(val)}
		for _, attr := range parts[1:] {
			aName, aVal, _ := strings.Cut(strings.TrimSpace(attr), "=")
			if aName == "" {
				continue
			}
			if c.Attrs == nil {
				c.Attrs = make(map[string]string)
			}
			c.Attrs[strings.ToLower(aName)] = aVal
		}
		cookies = append(cookies, c)
	}
	if len(cookies) == 0 {
		return nil, ns.notes
	}
	return cookies, ns.notes
}
