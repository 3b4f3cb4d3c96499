package httpdoctor

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const userAgent = "httpdoctor/1.0 (+https://github.com/httpdoctor/httpdoctor)"

// WireFetcher is the built-in Fetcher: it writes the request over a TCP or
// TLS connection itself and captures the response bytes verbatim, so the
// parser sees real framing instead of net/http's normalized view.
type WireFetcher struct {
	// Dialer is used for the TCP connection; a zero Dialer works.
	Dialer net.Dialer
	// MaxResponseBytes caps how much of a response is read off the wire.
	// Zero means 8 MiB.
	MaxResponseBytes int64
}

const defaultMaxResponseBytes = 8 << 20

func (w *WireFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.URL == nil || req.URL.Host == "" {
		return nil, &TransportError{URI: "", Err: errors.New("request URL is empty")}
	}
	addr := req.URL.Host
	if req.URL.Port() == "" {
		if req.URL.Scheme == "https" {
			addr = net.JoinHostPort(req.URL.Hostname(), "443")
		} else {
			addr = net.JoinHostPort(req.URL.Hostname(), "80")
		}
	}

	conn, err := w.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{URI: req.URL.String(), Err: errors.Wrap(err, "dial")}
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if req.URL.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: req.URL.Hostname()})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, &TransportError{URI: req.URL.String(), Err: errors.Wrap(err, "tls handshake")}
		}
		conn = tlsConn
	}

	if _, err := conn.Write(buildRequest(req)); err != nil {
		return nil, &TransportError{URI: req.URL.String(), Err: errors.Wrap(err, "write request")}
	}

	limit := w.MaxResponseBytes
	if limit <= 0 {
		limit = defaultMaxResponseBytes
	}
	raw, err := io.ReadAll(io.LimitReader(conn, limit))
	if err != nil && len(raw) == 0 {
		return nil, &TransportError{URI: req.URL.String(), Err: errors.Wrap(err, "read response")}
	}
	// A read error after some bytes arrived is still an analyzable
	// (truncated) response; the parser will note the incomplete body.
	return raw, nil
}

func buildRequest(req Request) []byte {
	target := req.URL.RequestURI()
	var b bytes.Buffer
	b.WriteString(req.Method)
	b.WriteString(" ")
	b.WriteString(target)
	b.WriteString(" HTTP/1.1\r\n")
	b.WriteString("Host: ")
	b.WriteString(req.URL.Host)
	b.WriteString("\r\n")

	names := make([]string, 0, len(req.ExtraHeaders))
	for name := range req.ExtraHeaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range req.ExtraHeaders[name] {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\r\n")
		}
	}
	if req.ExtraHeaders.Get("User-Agent") == "" {
		b.WriteString("User-Agent: " + userAgent + "\r\n")
	}
	b.WriteString("Connection: close\r\n\r\n")
	return b.Bytes()
}

// isHTTPURL reports whether a parsed URL is fetchable by this client.
func isHTTPURL(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	}
	return false
}
