package httpdoctor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one exchange to perform. ExtraHeaders are sent in
// addition to the defaults (Host, User-Agent, Connection: close).
type Request struct {
	Method       string
	URL          *url.URL
	ExtraHeaders http.Header
}

// Fetcher performs a raw HTTP/1.1 exchange and returns the response bytes
// exactly as received, including the status line and header block. The
// core is agnostic to how the bytes are obtained; TLS, pooling and DNS
// belong to the implementation.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// TransportError wraps a network-level failure. It surfaces as a bad Note
// on a body-less Diagnosis, never as a hard failure.
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
