// Package rfc9110 implements the generic HTTP field grammar and date
// formats from RFC 9110 that individual header analyzers share.
package rfc9110

import "strings"

// §  5.6.2.  Tokens
// §
// §       token          = 1*tchar
// §
// §       tchar          = "!" / "#" / "$" / "%" / "&" / "'" / "*"
// §                      / "+" / "-" / "." / "^" / "_" / "`" / "|" / "~"
// §                      / DIGIT / ALPHA
func IsTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// IsToken reports whether s is a non-empty token.
func IsToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsTokenChar(s[i]) {
			return false
		}
	}
	return true
}

// §  5.6.4.  Quoted Strings
// §
// §       quoted-string  = DQUOTE *( qdtext / quoted-pair ) DQUOTE
// §       qdtext         = HTAB / SP / %x21 / %x23-5B / %x5D-7E / obs-text
// §       quoted-pair    = "\" ( HTAB / SP / VCHAR / obs-text )
func IsQuotedString(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	for i := 1; i < len(s)-1; i++ {
		c := s[i]
		if c == '\\' {
			i++
			if i >= len(s)-1 {
				return false
			}
			continue
		}
		if c == '"' || (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}

// Unquote strips the quotes and escapes from a quoted-string.
// Values that are not quoted-strings are returned unchanged, matching how
// directive arguments accept both token and quoted-string forms.
func Unquote(s string) string {
	if !IsQuotedString(s) {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.Contains(inner, "\\") {
		return inner
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// §  5.6.1.  Lists (#rule ABNF Extension)
// §
// §     A recipient MUST parse and ignore a reasonable number of empty list
// §     elements: enough to handle common mistakes by senders that merge
// §     values using a comma (such as "example.com, , example.net").
//
// SplitList splits a comma-separated list value into its trimmed non-empty
// members. Commas inside quoted strings are not separators.
func SplitList(value string) []string {
	var members []string
	var start int
	inQuotes := false
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '"':
			inQuotes = !inQuotes
		case '\\':
			if inQuotes {
				i++
			}
		case ',':
			if !inQuotes {
				if m := strings.TrimSpace(value[start:i]); m != "" {
					members = append(members, m)
				}
				start = i + 1
			}
		}
	}
	if m := strings.TrimSpace(value[start:]); m != "" {
		members = append(members, m)
	}
	return members
}

// IsFieldValue reports whether s consists only of bytes allowed in a field
// value: visible characters, SP, HTAB and obs-text.
func IsFieldValue(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}
