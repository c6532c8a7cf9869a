package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/euring/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so batch
// logs can be attributed.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.Header.Get("User-Agent"))
}

// clientIP returns the host part of RemoteAddr, already rewritten by
// TrustedRealIP for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
