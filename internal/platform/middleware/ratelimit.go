package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	platformredis "vaultnet/internal/platform/redis"
	"vaultnet/pkg/requestcontext"
)

// RateLimit applies a fixed-window per-IP limit backed by Redis. The limiter
// fails open: when Redis is unreachable the request proceeds, since refusing
// all traffic on a cache outage is worse than briefly losing the limit.
func RateLimit(client *platformredis.Client, perMinute int, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil || perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = r.RemoteAddr
			}

			window := time.Now().Unix() / 60
			key := "ratelimit:" + ip + ":" + strconv.FormatInt(window, 10)

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable, failing open",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, time.Minute)
			}

			if count > int64(perMinute) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "rate_limited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
