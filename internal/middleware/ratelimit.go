// internal/middleware/ratelimit.go
//
// Per-client request budget.
//
// Context
// -------
// Every client IP gets RATE_LIMIT_MAX requests per RATE_LIMIT_WINDOW.  The
// window is fixed: it opens on the client's first request, and the budget
// only comes back once the window has ended.  Within one window a client
// can never get more than Max requests through, however it spaces them.
//
// Each budget is a golang.org/x/time/rate limiter with a zero refill rate
// and a burst of Max.  Starting a new window swaps in a fresh limiter.
//
// Notes
// -----
// • Health probes are exempt so orchestrators are never throttled.
// • Rejections answer 429 with Retry-After set to the seconds left in the
//   client's window.
// • Clients whose window has ended are swept once per window.
// • Oxford commas, two spaces after periods.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yanizio/formapi/internal/config"
	"github.com/yanizio/formapi/internal/metrics"
	"github.com/yanizio/formapi/internal/respond"
)

// limiterEntry is one client's budget for the window opened at start.
type limiterEntry struct {
	limiter *rate.Limiter
	start   time.Time
}

// RateLimiter hands out one fixed-window budget per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	max       int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter builds a limiter from RATE_LIMIT_MAX and RATE_LIMIT_WINDOW.
func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		max:      cfg.Max,
		window:   cfg.Window,
		now:      time.Now,
	}
}

// allow reports whether client may proceed and, if not, how long until its
// window ends.
func (rl *RateLimiter) allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.window {
		for k, e := range rl.limiters {
			if now.Sub(e.start) >= rl.window {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	e, ok := rl.limiters[client]
	if !ok || now.Sub(e.start) >= rl.window {
		// Zero rate: the burst is the whole budget until the next window.
		e = &limiterEntry{limiter: rate.NewLimiter(0, rl.max), start: now}
		rl.limiters[client] = e
	}
	if e.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, e.start.Add(rl.window).Sub(now)
}

// Handler applies the per-client limit.  Health probes are exempt.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}

		client := clientIP(r)
		ok, wait := rl.allow(client)
		if !ok {
			metrics.RateLimited.Inc()
			zap.S().Warnw("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"client", client,
			)
			w.Header().Set("Retry-After", strconv.Itoa(int((wait+time.Second-1)/time.Second)))
			respond.Error(w, http.StatusTooManyRequests, "too many requests from this IP, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr (already rewritten by RealIP).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
