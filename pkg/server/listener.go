package server

import (
	"fmt"
	"net"
	"time"

	proxyproto "github.com/pires/go-proxyproto"
)

// Listen opens a TCP listener on addr. With proxyProtocol set, connections
// may start with a PROXY v1 or v2 header and RemoteAddr reports the client
// address it carries; connections without a header are accepted unchanged.
func Listen(addr string, proxyProtocol bool, readHeaderTimeout time.Duration) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if !proxyProtocol {
		return ln, nil
	}

	return &proxyproto.Listener{
		Listener:          ln,
		ReadHeaderTimeout: readHeaderTimeout,
	}, nil
}
