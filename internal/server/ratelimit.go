package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/emperorhan/base-score/internal/metrics"
)

const (
	staleLimiterTTL = 10 * time.Minute
	sweepEvery      = time.Minute
	retryAfterSecs  = "60"
)

// RouteLimit is the per-client budget for every path under Prefix. An
// empty Prefix matches any path.
type RouteLimit struct {
	Prefix    string
	PerMinute float64
	Burst     int
}

// DefaultRouteLimits is checked in order; the first matching prefix wins.
func DefaultRouteLimits() []RouteLimit {
	return []RouteLimit{
		{Prefix: "/api/leaderboard", PerMinute: 10, Burst: 3},
		{Prefix: "/api/wallets/", PerMinute: 30, Burst: 5},
		{Prefix: "", PerMinute: 120, Burst: 10},
	}
}

type bucketKey struct {
	route  string
	client string
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per (route, client IP).
type RateLimitMiddleware struct {
	routes   []RouteLimit
	logger   *slog.Logger
	nowFunc  func() time.Time
	mu       sync.Mutex
	buckets  map[bucketKey]*bucket
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimitMiddleware starts a background sweep of idle buckets; call
// Stop to release it.
func NewRateLimitMiddleware(logger *slog.Logger, routes ...RouteLimit) *RateLimitMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	if len(routes) == 0 {
		routes = DefaultRouteLimits()
	}
	rl := &RateLimitMiddleware{
		routes:  routes,
		logger:  logger.With("component", "http_ratelimit"),
		nowFunc: time.Now,
		buckets: make(map[bucketKey]*bucket),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop is idempotent.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimitMiddleware) sweep() {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-t.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimitMiddleware) evictStale() {
	cutoff := rl.nowFunc().Add(-staleLimiterTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, k)
		}
	}
}

// LimiterCount reports how many client buckets are live.
func (rl *RateLimitMiddleware) LimiterCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractClientIP(r)
		if rl.take(r.URL.Path, ip) {
			next.ServeHTTP(w, r)
			return
		}
		metrics.HTTPRateLimited.Inc()
		rl.logger.Warn("rate limit exceeded", "path", r.URL.Path, "client_ip", ip)
		w.Header().Set("Retry-After", retryAfterSecs)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})
}

func (rl *RateLimitMiddleware) take(path, ip string) bool {
	route := rl.match(path)
	key := bucketKey{route: route.Prefix, client: ip}
	now := rl.nowFunc()

	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(rate.Limit(route.PerMinute/60), route.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	return b.tokens.AllowN(now, 1)
}

func (rl *RateLimitMiddleware) match(path string) RouteLimit {
	for _, route := range rl.routes {
		if strings.HasPrefix(path, route.Prefix) {
			return route
		}
	}
	return rl.routes[len(rl.routes)-1]
}

// extractClientIP prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address.
func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
