package note

// Template is the static part of a Note: severity, human-readable text and
// the specification section backing the finding.
type Template struct {
	Severity Severity
	Summary  string
	Text     string
	Ref      string
}

const (
	rfc9110 = "https://httpwg.org/specs/rfc9110.html"
	rfc9111 = "https://httpwg.org/specs/rfc9111.html"
	rfc9112 = "https://httpwg.org/specs/rfc9112.html"
	rfc6265 = "https://httpwg.org/specs/rfc6265.html"
)

// Catalog returns a copy of the registered template IDs mapped to their
// templates. Used by the coverage test; runtime code goes through New.
func Catalog() map[string]Template {
	out := make(map[string]Template, len(catalog))
	for id, tpl := range catalog {
		out[id] = tpl
	}
	return out
}

var catalog = map[string]Template{
	// message framing
	"STATUS_LINE_MALFORMED": {Bad,
		"The status line is malformed.",
		"The first line of the response could not be parsed as an HTTP/1.1 status line: `{line}`.",
		rfc9112 + "#status.line"},
	"STATUS_CODE_RANGE": {Bad,
		"The status code {code} is outside the range 100-599.",
		"HTTP status codes are three-digit integers between 100 and 599; recipients are likely to reject this response.",
		rfc9110 + "#status.codes"},
	"FIELD_NO_COLON": {Bad,
		"A header field line has no colon.",
		"The line `{line}` does not contain a colon separating the field name from its value, so it cannot be interpreted as a header field.",
		rfc9112 + "#header.field.syntax"},
	"FIELD_NAME_SPACE": {Bad,
		"The '{field_name}' header field name is followed by whitespace.",
		"HTTP bans whitespace between a field name and the colon; some recipients strip it and others refuse the message, which enables smuggling attacks.",
		rfc9112 + "#header.field.syntax"},
	"LINE_FOLDING": {Bad,
		"The '{field_name}' header field value is split across lines.",
		"Obsolete line folding (continuing a field value on the next line) is deprecated; many recipients refuse folded fields.",
		rfc9112 + "#obsolete.line.folding"},
	"CL_TE_CONFLICT": {Bad,
		"The response has both Content-Length and Transfer-Encoding.",
		"A message with both framing mechanisms is ambiguous and a request-smuggling vector. Transfer-Encoding takes precedence; the Content-Length was ignored.",
		rfc9112 + "#message.body.length"},
	"BAD_CHUNK": {Bad,
		"The chunked body could not be decoded.",
		"The response declared chunked transfer coding, but a chunk-size line was not valid hexadecimal: `{chunk_sample}`. Incorrect chunking breaks message delimitation.",
		rfc9112 + "#chunked.encoding"},
	"BODY_TRUNCATED": {Info,
		"Only the first {cap} bytes of the body were captured.",
		"The body exceeded the capture limit; analysis of its content reflects the captured prefix only.",
		""},
	"BODY_INCOMPLETE": {Bad,
		"The body is shorter than the declared Content-Length.",
		"Content-Length promised {declared} bytes but only {received} arrived before the connection ended.",
		rfc9112 + "#message.body.length"},
	"EXTRA_DATA": {Bad,
		"The response has extra data after the message body.",
		"Data was received past the declared end of the body, starting with `{sample}`. This is usually a wrong Content-Length or a server bug.",
		rfc9112 + "#message.body.length"},
	"BODY_NOT_ALLOWED": {Bad,
		"The response has a body, but its status does not allow one.",
		"1xx, 204 and 304 responses must not carry a body; clients may read the extra bytes as the next response on the connection.",
		rfc9112 + "#message.body"},

	// generic field analysis
	"HEADER_NOT_RECOGNIZED": {Info,
		"The {field_name} header is not recognized.",
		"This header is not registered and not known to this checker; only its generic syntax was validated.",
		""},
	"HEADER_DEPRECATED": {Warning,
		"The {field_name} header is deprecated.",
		"{deprecation_ref}",
		""},
	"FIELD_REPEATED": {Info,
		"The {field_name} header appears more than once.",
		"Repeated field lines were combined with commas in order. Headers without list syntax may not survive this intact.",
		rfc9110 + "#fields.order"},
	"FIELD_SINGLETON_REPEATED": {Bad,
		"The {field_name} header appears {count} times, but only one is allowed.",
		"This field is defined as a singleton; recipients disagree about which occurrence wins. The first was used.",
		rfc9110 + "#fields.limits"},
	"BAD_SYNTAX": {Bad,
		"The {field_name} header's value is not valid.",
		"The value `{value}` does not match the field's grammar.",
		rfc9110 + "#fields.values"},

	// per-header
	"BAD_DATE_SYNTAX": {Bad,
		"The {field_name} header's value is not a valid date.",
		"HTTP dates must use the IMF-fixdate format, e.g. `Sun, 06 Nov 1994 08:49:37 GMT`. The value `{value}` could not be parsed.",
		rfc9110 + "#http.date"},
	"DATE_OBSOLETE_FORMAT": {Warning,
		"The {field_name} header uses an obsolete date format.",
		"The value parsed, but only via the RFC 850 or asctime fallback; senders must generate IMF-fixdate.",
		rfc9110 + "#http.date"},
	"CC_DIRECTIVE_BAD_ARG": {Bad,
		"The Cache-Control {directive} directive's value is not valid.",
		"`{directive}={value}` was ignored; this directive takes a non-negative integer number of seconds. Caches treat responses with invalid freshness information as stale.",
		rfc9111 + "#cache.control"},
	"CC_DUPLICATE_DIRECTIVE": {Warning,
		"The Cache-Control {directive} directive is repeated.",
		"When a directive occurs more than once, caches use the first occurrence or treat the response as stale.",
		rfc9111 + "#cache.control"},
	"CC_MISCAPITALIZED": {Warning,
		"The Cache-Control {directive} directive has non-standard capitalization.",
		"Directive names are compared case-insensitively, but some deployed caches match `{directive}` case-sensitively and will miss it.",
		rfc9111 + "#cache.control"},
	"AGE_NOT_INT": {Bad,
		"The Age header's value is not a non-negative integer.",
		"`{value}` is not a valid delta-seconds value; caches ignore the field.",
		rfc9111 + "#field.age"},
	"ETAG_BAD_SYNTAX": {Bad,
		"The ETag header's value is not a valid entity tag.",
		"An entity tag is an optionally weak (`W/`) quoted string; `{value}` does not match.",
		rfc9110 + "#field.etag"},
	"LM_FUTURE": {Warning,
		"The Last-Modified time is in the future.",
		"A resource cannot have been modified after the response was generated; validators derived from this value are unreliable.",
		rfc9110 + "#field.last-modified"},
	"CT_BAD_SYNTAX": {Bad,
		"The Content-Type header's value is not a valid media type.",
		"`{value}` is not a `type/subtype` media type with optional parameters.",
		rfc9110 + "#field.content-type"},
	"CL_NOT_INT": {Bad,
		"The Content-Length header's value is not a non-negative integer.",
		"`{value}` cannot frame a message body; recipients will reject or mis-frame the response.",
		rfc9112 + "#body.content-length"},
	"CL_CONFLICTING_VALUES": {Bad,
		"Multiple Content-Length values disagree.",
		"The response carries differing Content-Length values ({values}); message framing is ambiguous.",
		rfc9112 + "#body.content-length"},
	"TE_UNKNOWN_CODING": {Warning,
		"The '{coding}' transfer coding is not recognized.",
		"Unknown transfer codings prevent recipients from determining where the message ends.",
		rfc9112 + "#field.transfer-encoding"},
	"TE_CHUNKED_NOT_LAST": {Bad,
		"chunked is not the final transfer coding.",
		"When chunked is applied it must be the last coding, otherwise the message cannot be framed.",
		rfc9112 + "#field.transfer-encoding"},
	"CE_UNKNOWN_CODING": {Warning,
		"The '{coding}' content coding is not recognized.",
		"Recipients that do not understand a content coding cannot decode the body.",
		rfc9110 + "#field.content-encoding"},
	"VARY_STAR": {Warning,
		"Vary: * effectively makes the response uncacheable.",
		"A Vary value of * means any aspect of the request may have selected this response, so a cache can never reuse it.",
		rfc9110 + "#field.vary"},
	"VARY_BAD_NAME": {Bad,
		"The Vary header lists an invalid field name.",
		"`{value}` is not a valid HTTP field name.",
		rfc9110 + "#field.vary"},
	"LOCATION_PARSE": {Bad,
		"The Location header's value is not a valid URI reference.",
		"`{value}` could not be parsed, so the redirect target is unknown.",
		rfc9110 + "#field.location"},
	"SET_COOKIE_BAD": {Bad,
		"A Set-Cookie header is not a valid cookie.",
		"`{value}` does not start with a `name=value` cookie pair.",
		rfc6265 + "#sane-set-cookie"},
	"RANGES_UNKNOWN_UNIT": {Warning,
		"The '{unit}' range unit is not recognized.",
		"Only the `bytes` unit (and `none`) are registered; clients cannot make use of this advertisement.",
		rfc9110 + "#field.accept-ranges"},
	"ALLOW_BAD_METHOD": {Bad,
		"The Allow header lists an invalid method token.",
		"`{value}` is not a valid HTTP method token.",
		rfc9110 + "#field.allow"},
	"RETRY_AFTER_BAD": {Bad,
		"The Retry-After header is neither a date nor a number of seconds.",
		"`{value}` cannot tell a client how long to wait.",
		rfc9110 + "#field.retry-after"},

	// cross-header facts
	"FRESHNESS_FRESH": {Good,
		"The response is fresh for {freshness} more seconds.",
		"Its freshness lifetime is {lifetime} seconds ({source}) and its current age is {age} seconds; caches may serve it without revalidation until then.",
		rfc9111 + "#expiration.model"},
	"FRESHNESS_STALE": {Warning,
		"The response is already stale.",
		"Its freshness lifetime is {lifetime} seconds ({source}) but its current age is {age} seconds; caches must revalidate before serving it.",
		rfc9111 + "#serving.stale.responses"},
	"FRESHNESS_NONE": {Info,
		"The response doesn't have an explicit freshness lifetime.",
		"Neither Cache-Control max-age/s-maxage nor Expires is usable, so caches will fall back to heuristic freshness.",
		rfc9111 + "#heuristic.freshness"},
	"EXPIRES_IGNORED": {Info,
		"Expires is ignored because Cache-Control max-age is present.",
		"",
		rfc9111 + "#field.expires"},
	"DATE_ABSENT": {Warning,
		"The response doesn't have a usable Date header.",
		"The time the response was received substitutes for Date in freshness calculations, which hides clock skew between the origin and its caches.",
		rfc9110 + "#field.date"},
	"NO_STORE": {Info,
		"The response can't be stored by a cache.",
		"Cache-Control: no-store forbids storing any part of this exchange.",
		rfc9111 + "#cache-response-directive.no-store"},
	"STATUS_UNCACHEABLE": {Info,
		"The {code} status is not cacheable by default.",
		"Caches will not store this response unless explicit freshness information is present.",
		rfc9111 + "#storing.responses"},
	"METHOD_UNCACHEABLE": {Info,
		"Responses to {method} requests aren't cacheable.",
		"",
		rfc9111 + "#storing.responses"},
	"CACHEABLE_PRIVATE": {Info,
		"The response is cacheable by private caches only ({directive}).",
		"",
		rfc9111 + "#cache-response-directive.private"},
	"CACHEABLE_SHARED": {Good,
		"The response is cacheable by shared and private caches.",
		"",
		rfc9111 + "#storing.responses"},
	"VALIDATOR_STRONG": {Good,
		"The response has a strong validator (ETag).",
		"Conditional requests and byte-range resumption can use it safely.",
		rfc9110 + "#validators.strength"},
	"VALIDATOR_WEAK": {Info,
		"The response only has a weak validator ({validator}).",
		"Weak validators support revalidation but not byte-range resumption.",
		rfc9110 + "#validators.strength"},
	"VALIDATOR_NONE": {Warning,
		"The response has no validator.",
		"Without an ETag or Last-Modified, caches cannot revalidate and must refetch the full response when it goes stale.",
		rfc9110 + "#validators"},

	// orchestrator / related fetches
	"TRANSPORT_ERROR": {Bad,
		"The resource could not be fetched: {error}.",
		"",
		""},
	"PARSE_ABANDONED": {Bad,
		"The response could not be parsed beyond byte {offset}.",
		"{error}",
		rfc9112},
	"REDIRECT_WITHOUT_LOCATION": {Bad,
		"The {code} redirect has no Location header.",
		"Clients have no way to follow this redirect.",
		rfc9110 + "#field.location"},
	"REDIRECT_LOOP": {Bad,
		"The redirect chain loops back to {uri}.",
		"Following the chain visited this URI twice; clients will give up, usually with an error shown to the user.",
		""},
	"REDIRECT_LIMIT": {Bad,
		"The redirect chain is longer than {limit} hops.",
		"Long chains add latency and many clients cap the number of redirects they follow.",
		""},
	"CONDITIONAL_SUPPORTED": {Good,
		"The resource supports conditional requests ({precondition}).",
		"A revalidation request returned 304 Not Modified, so caches can refresh this response cheaply.",
		rfc9110 + "#conditional.requests"},
	"CONDITIONAL_NOT_SUPPORTED": {Warning,
		"The resource ignores conditional requests.",
		"A request with {precondition} returned {code} instead of 304 Not Modified; caches must transfer the full response to revalidate.",
		rfc9110 + "#conditional.requests"},
	"RANGE_CORRECT": {Good,
		"The resource supports byte-range requests.",
		"A request for bytes {range} returned a matching 206 Partial Content.",
		rfc9110 + "#range.requests"},
	"RANGE_INCORRECT": {Bad,
		"The range response's content doesn't match the full response.",
		"A request for bytes {range} returned 206, but the bytes differ from the same range of the full body; range handling is broken.",
		rfc9110 + "#range.requests"},
	"RANGE_FULL": {Warning,
		"The resource advertises ranges but returned the full response.",
		"Accept-Ranges promises partial content, yet a range request returned 200.",
		rfc9110 + "#field.accept-ranges"},
	"RANGE_STATUS": {Warning,
		"The range request returned an unexpected {code} status.",
		"",
		rfc9110 + "#range.requests"},
	"SUBREQ_PROBLEM": {Info,
		"A {kind} check request could not be completed: {problem}.",
		"Findings that depend on this auxiliary request were skipped.",
		""},

	// content negotiation (gzip)
	"CONNEG_GZIP_GOOD": {Good,
		"Content negotiation for gzip is supported, saving {savings}%.",
		"Asking for a compressed response shrank the body from {orig_size} to {gzip_size} bytes.",
		rfc9110 + "#field.accept-encoding"},
	"CONNEG_GZIP_BAD": {Warning,
		"Negotiated gzip compression makes the response {savings}% larger.",
		"The compressed variant grew from {orig_size} to {gzip_size} bytes; compressing this resource is counterproductive.",
		rfc9110 + "#field.accept-encoding"},
	"CONNEG_NO_GZIP": {Info,
		"Content negotiation for gzip isn't supported.",
		"",
		rfc9110 + "#field.accept-encoding"},
	"CONNEG_GZIP_WITHOUT_ASKING": {Warning,
		"A gzip-compressed response was sent when it wasn't asked for.",
		"Clients that did not offer Accept-Encoding: gzip may be unable to decode this response.",
		rfc9110 + "#field.content-encoding"},
	"CONNEG_NO_VARY": {Bad,
		"The negotiated response doesn't have an appropriate Vary header.",
		"The response varies by Accept-Encoding, so Vary needs to list it for caches to key variants correctly.",
		rfc9110 + "#field.vary"},
	"VARY_INCONSISTENT": {Bad,
		"The resource doesn't send Vary consistently.",
		"The negotiated variant sent Vary `{conneg_vary}` while the plain one sent `{no_conneg_vary}`; caches cannot compute a stable cache key.",
		rfc9110 + "#field.vary"},
	"VARY_STATUS_MISMATCH": {Warning,
		"The status changes when content negotiation happens ({neg_status} vs {noneg_status}).",
		"Further negotiation checks were skipped because the variants are not comparable.",
		""},
	"VARY_HEADER_MISMATCH": {Bad,
		"The {field_name} header is different when content negotiation happens.",
		"",
		rfc9110 + "#field.vary"},
	"VARY_BODY_MISMATCH": {Info,
		"The response body is different when content negotiation happens.",
		"This can be legitimate (e.g. different servers answered), but it may skew other findings.",
		""},
	"VARY_ETAG_DOESNT_CHANGE": {Bad,
		"The ETag doesn't change between negotiated representations.",
		"Different representations of the same resource need different entity tags, or caches and conditional requests confuse them.",
		rfc9110 + "#field.etag"},
}
