package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"learnhub/internal/common"
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis. It is
// infrastructure glue in front of the auth routes, not core logic.
type Limiter struct {
	rdb    *redis.Client
	logger *slog.Logger
	max    int
	window time.Duration
}

func New(rdb *redis.Client, logger *slog.Logger, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, logger: logger, max: max, window: window}
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s:%d", r.RemoteAddr, time.Now().Unix()/int64(l.window.Seconds()))

		count, err := l.rdb.Incr(r.Context(), key).Result()
		if err != nil {
			// Redis being down must not take the API down with it.
			l.logger.Warn("rate limiter unavailable, letting request through", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			l.rdb.Expire(r.Context(), key, l.window)
		}
		if count > int64(l.max) {
			common.RespondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
