package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/mssola/useragent"

	"vaultnet/pkg/requestcontext"
)

// Device records client IP, raw User-Agent, and a parsed "browser/os"
// summary in the request context. Audit events for binding and swap
// operations carry these for forensics.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ua := r.UserAgent()

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, ua)
		if ua != "" {
			parsed := useragent.New(ua)
			browser, version := parsed.Browser()
			summary := fmt.Sprintf("%s %s/%s", browser, version, parsed.OS())
			ctx = requestcontext.WithDevice(ctx, summary)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
