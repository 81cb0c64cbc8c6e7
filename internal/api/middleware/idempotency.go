// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// IdempotencyHeader is the standard HTTP header for idempotency keys.
	IdempotencyHeader = "Idempotency-Key"

	// idempotencyCacheTTL defines how long responses are cached in Redis.
	idempotencyCacheTTL = 24 * time.Hour

	// lockTimeout prevents indefinite locks if a request crashes.
	lockTimeout = 10 * time.Second

	redisKeyPrefix = "idempotency:"
	lockKeyPrefix  = "lock:"
)

// responseRecorder captures the status code and body so a successful
// response can be cached and replayed.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the cached response for a repeated Idempotency-Key and
// rejects concurrent requests carrying the same key with 409. Requests
// without the header pass through untouched. The escrow core itself stays
// idempotency-free; retried callers opt in per request.
func Idempotency(rdb *redis.Client, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := redisKeyPrefix + key
			lockKey := lockKeyPrefix + key

			cached, err := rdb.Get(ctx, cacheKey).Result()
			if err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				_, _ = w.Write([]byte(cached))
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "processing", lockTimeout).Result()
			if err != nil {
				logger.Error("Idempotency lock acquisition failed", "error", err)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				return
			}
			if !acquired {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "a request with this idempotency key is currently being processed",
				})
				return
			}
			defer func() {
				if err := rdb.Del(ctx, lockKey).Err(); err != nil {
					logger.Error("Failed to release idempotency lock", "key", key, "error", err)
				}
			}()

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			// Cache successful responses only.
			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				if err := rdb.Set(ctx, cacheKey, recorder.body.String(), idempotencyCacheTTL).Err(); err != nil {
					logger.Error("Failed to cache idempotent response", "key", key, "error", err)
				}
			}
		})
	}
}
