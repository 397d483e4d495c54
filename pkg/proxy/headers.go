package proxy

import (
	"net"
	"net/http"
	"net/textproto"
	"strings"
)

// isHopByHopHeader reports whether name is a hop-by-hop header that must not
// cross the proxy in either direction. The name must already be
// canonicalized with http.CanonicalHeaderKey.
func isHopByHopHeader(name string) bool {
	switch name {
	case "Connection",
		"Proxy-Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Te",
		"Trailer",
		"Transfer-Encoding",
		"Upgrade":
		return true
	default:
		return false
	}
}

// connectionTokens returns the header names listed in Connection, which are
// hop-by-hop for this message only.
func connectionTokens(h http.Header) map[string]struct{} {
	var tokens map[string]struct{}
	for _, value := range h.Values("Connection") {
		for _, token := range strings.Split(value, ",") {
			token = textproto.TrimString(token)
			if token == "" {
				continue
			}
			if tokens == nil {
				tokens = make(map[string]struct{})
			}
			tokens[http.CanonicalHeaderKey(token)] = struct{}{}
		}
	}
	return tokens
}

// isUpgrade reports whether the request asks to switch protocols.
func isUpgrade(h http.Header) bool {
	if h.Get("Upgrade") == "" {
		return false
	}
	_, ok := connectionTokens(h)["Upgrade"]
	return ok
}

// endToEndHeaders copies h without hop-by-hop headers. Value slices are
// copied so the result never aliases h.
func endToEndHeaders(h http.Header) http.Header {
	tokens := connectionTokens(h)
	out := make(http.Header, len(h))
	for name, values := range h {
		if isHopByHopHeader(name) {
			continue
		}
		if _, listed := tokens[name]; listed {
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}

// buildUpstreamHeaders returns the headers sent upstream for in: its
// end-to-end headers plus X-Forwarded-For, X-Forwarded-Host and
// X-Forwarded-Proto.
func buildUpstreamHeaders(in *http.Request, clientIP string) http.Header {
	headers := endToEndHeaders(in.Header)

	if clientIP != "" {
		if prior := headers.Values("X-Forwarded-For"); len(prior) > 0 {
			clientIP = strings.Join(prior, ", ") + ", " + clientIP
		}
		headers.Set("X-Forwarded-For", clientIP)
	}

	if headers.Get("X-Forwarded-Host") == "" && in.Host != "" {
		headers.Set("X-Forwarded-Host", in.Host)
	}

	if headers.Get("X-Forwarded-Proto") == "" {
		proto := "http"
		if in.TLS != nil {
			proto = "https"
		}
		headers.Set("X-Forwarded-Proto", proto)
	}

	return headers
}

// ClientIP returns the host part of a request's RemoteAddr. With the PROXY
// protocol enabled the listener has already replaced RemoteAddr with the
// address the load balancer reported.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
