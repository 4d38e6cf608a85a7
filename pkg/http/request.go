package http

import (
	"net"
	"net/http"
)

// ClientIP returns the request's client address without the port. The router
// resolves X-Forwarded-For before handlers run, so RemoteAddr is already the
// best available answer.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
