package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter gates credential endpoints (register, login) per client.
type RateLimiter interface {
	Allow(key string) bool
}

// authScope keeps credential attempts in their own limiter bucket so future
// scoped limits (e.g. uploads) do not share a budget with login.
const authScope = "auth"

func allowAuthAttempt(limiter RateLimiter, r *http.Request) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(authScope + ":" + clientIP(r))
}

// clientIP prefers the first X-Forwarded-For entry when it parses as an
// address, otherwise falls back to the connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first := forwarded
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			first = forwarded[:idx]
		}
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
