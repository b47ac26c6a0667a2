package security

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a request middleware that allows at most limit requests
// per client IP inside the window. Used on the unauthenticated CV ingest
// endpoints, which would otherwise accept arbitrary write traffic.
//
// The counter lives in Redis so the limit holds across replicas. A Redis
// failure fails open: dropping real camera frames is worse than letting a
// burst through.
func RateLimit(client *redis.Client, scope string, limit int, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if client == nil {
			return e.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, e.RealIP())

		count, err := client.Incr(e.Request.Context(), key).Result()
		if err != nil {
			slog.Warn("rate limit counter unavailable", "scope", scope, "error", err)
			return e.Next()
		}
		if count == 1 {
			if err := client.Expire(e.Request.Context(), key, window).Err(); err != nil {
				slog.Warn("rate limit expire failed", "key", key, "error", err)
			}
		}

		if count > int64(limit) {
			return apis.NewApiError(http.StatusTooManyRequests, "Too many requests, slow down.", nil)
		}

		return e.Next()
	}
}
