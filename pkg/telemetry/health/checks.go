package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
)

// DestinationCheck returns a check that opens and closes a TCP connection
// to the destination's host and port. No HTTP request is sent, so the
// upstream never sees probe traffic.
func DestinationCheck(destination *url.URL) CheckFunc {
	addr := destinationAddr(destination)
	var dialer net.Dialer

	return func(ctx context.Context) error {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("destination %s unreachable: %w", addr, err)
		}
		return conn.Close()
	}
}

// destinationAddr returns host:port for u, filling in the scheme's default
// port.
func destinationAddr(u *url.URL) string {
	if port := u.Port(); port != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
