package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"vaultnet/pkg/capability"
	"vaultnet/pkg/requestcontext"
)

// TokenValidator validates a capability token and returns the capability
// names it grants.
type TokenValidator interface {
	ValidateToken(tokenString string) ([]string, error)
}

// CapabilityAuth parses a Bearer capability token and stores the granted
// capability set in the request context. Requests without a token proceed
// with an empty set; services fail closed on gated operations. Permissionless
// routes (flush) therefore need no special casing here.
func CapabilityAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			caps, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "rejected capability token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "unauthorized",
				})
				return
			}

			ctx := requestcontext.WithCapabilities(r.Context(), capability.ParseSet(caps))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
