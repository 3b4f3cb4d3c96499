package httpdoctor

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpdoctor/httpdoctor/message"
)

func TestBuildRequest(t *testing.T) {
	u, _ := url.Parse("http://example.com/path?q=1")
	extra := make(http.Header)
	extra.Set("Accept-Encoding", "gzip")
	raw := buildRequest(Request{Method: "GET", URL: u, ExtraHeaders: extra})

	msg, notes, err := message.ParseRequest(raw, message.Options{})
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, "GET", msg.Method)
	assert.Equal(t, "/path?q=1", msg.Target)
	assert.Equal(t, "example.com", msg.Get("Host"))
	assert.Equal(t, "gzip", msg.Get("Accept-Encoding"))
	assert.Equal(t, "close", msg.Get("Connection"))
	assert.NotEmpty(t, msg.Get("User-Agent"))
}

func TestBuildRequestUserAgentOverride(t *testing.T) {
	u, _ := url.Parse("http://example.com/")
	extra := make(http.Header)
	extra.Set("User-Agent", "custom/1")
	raw := string(buildRequest(Request{Method: "GET", URL: u, ExtraHeaders: extra}))

	assert.Equal(t, 1, strings.Count(raw, "User-Agent:"))
	assert.Contains(t, raw, "User-Agent: custom/1\r\n")
}

func TestWireFetcherLoopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	const canned = "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	served := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			served <- nil
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		n, _ := conn.Read(buf)
		conn.Write([]byte(canned))
		served <- buf[:n]
	}()

	u, _ := url.Parse("http://" + ln.Addr().String() + "/hello")
	fetcher := &WireFetcher{}
	raw, err := fetcher.Fetch(context.Background(), Request{Method: "GET", URL: u})
	require.NoError(t, err)
	assert.Equal(t, canned, string(raw))

	request := <-served
	assert.True(t, strings.HasPrefix(string(request), "GET /hello HTTP/1.1\r\n"),
		"request was %q", request)
}

func TestWireFetcherConnectionRefused(t *testing.T) {
	// grab a port and close it again so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	u, _ := url.Parse("http://" + addr + "/")
	fetcher := &WireFetcher{}
	_, err = fetcher.Fetch(context.Background(), Request{Method: "GET", URL: u})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Error(), u.String())
}

func TestWireFetcherResponseCap(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		conn.Read(buf)
		conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("x", 1024)))
	}()

	u, _ := url.Parse("http://" + ln.Addr().String() + "/")
	fetcher := &WireFetcher{MaxResponseBytes: 100}
	raw, err := fetcher.Fetch(context.Background(), Request{Method: "GET", URL: u})
	require.NoError(t, err)
	assert.Len(t, raw, 100)
	<-done
}

func TestWireFetcherEmptyURL(t *testing.T) {
	fetcher := &WireFetcher{}
	_, err := fetcher.Fetch(context.Background(), Request{Method: "GET"})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}
