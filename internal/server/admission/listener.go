package admission

import (
	"net"

	"golang.org/x/net/netutil"
)

// LimitListener returns a listener that accepts at most n simultaneous
// connections. n <= 0 returns l unchanged.
func LimitListener(l net.Listener, n int) net.Listener {
	if n <= 0 {
		return l
	}
	return netutil.LimitListener(l, n)
}

// RemoteHost returns the host part of addr, or its full string form when
// it carries no port.
func RemoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
