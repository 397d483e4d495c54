package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mercator-hq/loupe/pkg/capture"
	"mercator-hq/loupe/pkg/config"
)

// Forwarder sends each inbound request to a single fixed destination. It
// makes exactly one attempt per request and never retries.
type Forwarder struct {
	destination *url.URL
	transport   http.RoundTripper
}

// NewForwarder creates a forwarder for destination. A nil transport uses
// NewTransport with default timeouts.
func NewForwarder(destination *url.URL, transport http.RoundTripper) *Forwarder {
	if transport == nil {
		transport = NewTransport(config.ProxyConfig{})
	}
	return &Forwarder{
		destination: destination,
		transport:   transport,
	}
}

// NewTransport builds the upstream transport. Environment proxies are
// ignored and transparent decompression is disabled so the client gets the
// upstream bytes exactly as sent.
func NewTransport(cfg config.ProxyConfig) *http.Transport {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = config.DefaultDialTimeout
	}

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: config.DefaultIdleTimeout / 4,
	}

	return &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       cfg.IdleTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ExpectContinueTimeout: time.Second,
		DisableCompression:    true,
	}
}

// Destination returns the destination base URL.
func (f *Forwarder) Destination() *url.URL {
	return f.destination
}

// Forward sends in upstream with body as its payload and returns the captured
// response. Errors are always *Failure values. The inbound request is not
// modified; the call is abandoned when ctx is cancelled.
func (f *Forwarder) Forward(ctx context.Context, clientIP string, in *http.Request, body []byte) (*capture.Message, error) {
	if isUpgrade(in.Header) {
		return nil, newFailure(KindOther, "protocol upgrade not supported", nil)
	}

	target, err := f.targetURL(in.URL)
	if err != nil {
		return nil, newFailure(KindInvalidDestination, "invalid destination URL", err)
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	out, err := http.NewRequestWithContext(ctx, in.Method, target, reader)
	if err != nil {
		return nil, newFailure(KindInvalidDestination, "invalid upstream request", err)
	}
	out.Header = buildUpstreamHeaders(in, clientIP)
	out.Host = f.destination.Host
	out.ContentLength = int64(len(body))
	if len(body) == 0 {
		out.Body = http.NoBody
	}

	resp, err := f.transport.RoundTrip(out)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, newFailure(KindOther, "request cancelled", err)
		}
		return nil, newFailure(KindTransport, "upstream request failed", err)
	}

	respBody, err := capture.ReadBody(resp.Body)
	if err != nil {
		return nil, newFailure(KindTransport, "failed to read upstream response", err)
	}

	msg := capture.NewResponse(resp, respBody)
	msg.Header = endToEndHeaders(msg.Header)
	return msg, nil
}

// targetURL joins the destination base URL with the inbound path and query.
func (f *Forwarder) targetURL(in *url.URL) (string, error) {
	var b strings.Builder
	b.WriteString(f.destination.Scheme)
	b.WriteString("://")
	b.WriteString(f.destination.Host)
	b.WriteString(singleJoiningSlash(f.destination.EscapedPath(), in.EscapedPath()))

	query := f.destination.RawQuery
	switch {
	case query == "":
		query = in.RawQuery
	case in.RawQuery != "":
		query += "&" + in.RawQuery
	}
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}

	u, err := url.Parse(b.String())
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("destination has no host")
	}
	return u.String(), nil
}

func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}
