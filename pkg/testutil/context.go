package testutil

import (
	"context"
	"net/http"
	"time"

	"vaultnet/pkg/capability"
	"vaultnet/pkg/requestcontext"
)

// CtxWithCaps returns a background context carrying the given capabilities.
// This simulates what the capability-auth middleware would do for a request
// bearing a valid token.
func CtxWithCaps(caps ...capability.Capability) context.Context {
	return requestcontext.WithCapabilities(context.Background(), capability.NewSet(caps...))
}

// CtxAt pins the context clock to a specific instant, the way the
// request-time middleware and the flush daemon do.
func CtxAt(ctx context.Context, at time.Time) context.Context {
	return requestcontext.WithTime(ctx, at)
}

// WithCaps attaches a capability set to an HTTP request's context.
func WithCaps(req *http.Request, caps ...capability.Capability) *http.Request {
	ctx := requestcontext.WithCapabilities(req.Context(), capability.NewSet(caps...))
	return req.WithContext(ctx)
}

// WithRequestTime pins the request's clock.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
