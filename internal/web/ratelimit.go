package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/run-o/talehopper/internal/config"
	"github.com/run-o/talehopper/internal/storage"
)

// rateLimiter applies per-IP request limits. With Redis available the
// window is shared across replicas; otherwise (or when Redis errors)
// each replica falls back to local token buckets.
type rateLimiter struct {
	store  *storage.RedisStore
	logger *slog.Logger

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newRateLimiter(store *storage.RedisStore, logger *slog.Logger) *rateLimiter {
	return &rateLimiter{
		store:   store,
		logger:  logger,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Middleware limits the wrapped handler to rule.Limit requests per
// rule.Window per client IP.
func (l *rateLimiter) Middleware(name string, rule config.RateRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rule.Limit <= 0 || rule.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !l.allow(r.Context(), name, ip, rule) {
				l.logger.Warn("rate limit hit", "endpoint", name, "ip", ip)
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *rateLimiter) allow(ctx context.Context, name, ip string, rule config.RateRule) bool {
	if l.store != nil {
		key := fmt.Sprintf("ratelimit:%s:%s", name, ip)
		allowed, err := l.store.AllowRate(ctx, key, rule.Limit, rule.Window)
		if err == nil {
			return allowed
		}
		l.logger.Warn("redis rate check failed, falling back to local limiter", "error", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := name + ":" + ip
	limiter, ok := l.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rule.Window/time.Duration(rule.Limit)), rule.Limit)
		l.buckets[key] = limiter
	}
	return limiter.Allow()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
