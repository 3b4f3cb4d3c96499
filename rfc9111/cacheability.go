package rfc9111

import "github.com/httpdoctor/httpdoctor/headers"

// CacheableBy classifies which caches may store a response.
type CacheableBy int

const (
	CacheableNone CacheableBy = iota
	CacheablePrivate
	CacheableShared
)

func (c CacheableBy) String() string {
	switch c {
	case CacheableNone:
		return "none"
	case CacheablePrivate:
		return "private"
	case CacheableShared:
		return "shared"
	}
	return "unknown"
}

// §  4.2.2: a heuristically cacheable status code may be stored even
// §  without explicit freshness information.
var heuristicallyCacheable = map[int]bool{
	200: true, 203: true, 204: true, 206: true, 300: true, 301: true,
	304: true, 308: true, 404: true, 405: true, 410: true, 414: true,
	501: true,
}

// Cacheability decides which caches may store the response, and names the
// rule that decided. hasAuthorization reports whether the request carried
// credentials; hasExplicitFreshness whether the response carries explicit
// expiry (which also unlocks non-heuristic status codes).
//
// §  3.  Storing Responses in Caches: a cache MUST NOT store a response
// §  with no-store, to a request method it doesn't understand as
// §  cacheable, or (for shared caches) to an authenticated request absent
// §  explicit permission.
func Cacheability(method string, status int, cc headers.CacheControl,
	hasAuthorization, hasExplicitFreshness bool) (CacheableBy, string) {

	if cc.Has("no-store") {
		return CacheableNone, "no-store"
	}
	if method != "GET" && method != "HEAD" {
		return CacheableNone, "method"
	}
	if !heuristicallyCacheable[status] && !hasExplicitFreshness {
		return CacheableNone, "status"
	}
	if cc.Has("private") {
		return CacheablePrivate, "private"
	}
	if hasAuthorization && !cc.Has("public") &&
		!cc.Has("s-maxage") && !cc.Has("must-revalidate") {
		return CacheablePrivate, "authorization"
	}
	return CacheableShared, ""
}
