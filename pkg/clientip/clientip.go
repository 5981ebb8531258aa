package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when RemoteAddr is empty.
const Unknown = "unknown"

// RealClientIP returns the client IP from r.RemoteAddr. Forwarding headers are
// ignored so a caller cannot pick its own rate-limit bucket or audit address.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return Unknown
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
