package api

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	rateLimiterCleanupInterval = 5 * time.Minute
	rateLimiterStaleThreshold  = 10 * time.Minute
)

// LimitConfig defines one sliding-window rate limit: at most MaxRequests
// within any trailing Window.
type LimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// Route presets. Anonymous clients get the stricter limit; clients that
// identify themselves via X-User-ID get the authenticated one.
//
// Only the chat presets are wired to routes; the rest mirror the
// deployment's full limit table and exist for config wiring (saved answers,
// document management, and auth endpoints live behind the same proxy).
var (
	LimitChatAnonymous     = LimitConfig{Window: time.Minute, MaxRequests: 5}
	LimitChatAuthenticated = LimitConfig{Window: time.Minute, MaxRequests: 20}

	LimitSavedAnonymous     = LimitConfig{Window: time.Minute, MaxRequests: 10}
	LimitSavedAuthenticated = LimitConfig{Window: time.Minute, MaxRequests: 30}

	LimitDocumentUpload = LimitConfig{Window: time.Hour, MaxRequests: 10}
	LimitDocumentList   = LimitConfig{Window: time.Minute, MaxRequests: 60}

	LimitAuthSignup = LimitConfig{Window: time.Minute, MaxRequests: 5}
	LimitAuthLogin  = LimitConfig{Window: time.Minute, MaxRequests: 10}
)

// rateLimitResult is the outcome of one rate limit check.
type rateLimitResult struct {
	allowed    bool
	limit      int
	remaining  int
	resetAt    time.Time
	retryAfter int // Seconds until the oldest request leaves the window
}

// rateEntry holds one key's request timestamps inside the window plus the
// instant the key was last touched. lastAccess advances on every check,
// denied or not, so a client hammering an exhausted long window is never
// mistaken for an idle one.
type rateEntry struct {
	stamps     []time.Time
	lastAccess time.Time
}

// rateLimiter implements per-key sliding-window rate limiting.
// Each key tracks the timestamps of its requests inside the window; pruning
// and the admission decision happen atomically under one lock, so concurrent
// requests for the same key cannot both claim the last slot.
//
// Cleanup of stale keys happens inline during check calls.
type rateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateEntry
	lastCleanup time.Time

	// now is swapped out in tests.
	now func() time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		entries:     make(map[string]*rateEntry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// check records a request attempt for key and reports whether it is allowed
// under cfg. Denied attempts do not consume window slots but still refresh
// the key's lastAccess.
func (rl *rateLimiter) check(key string, cfg LimitConfig) rateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Periodic cleanup of keys idle past the stale threshold
	if now.Sub(rl.lastCleanup) > rateLimiterCleanupInterval {
		for k, e := range rl.entries {
			if now.Sub(e.lastAccess) > rateLimiterStaleThreshold {
				delete(rl.entries, k)
			}
		}
		rl.lastCleanup = now
	}

	e, ok := rl.entries[key]
	if !ok {
		e = &rateEntry{}
		rl.entries[key] = e
	}
	e.lastAccess = now

	cutoff := now.Add(-cfg.Window)
	kept := e.stamps[:0]
	for _, ts := range e.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.stamps = kept

	// Remaining slots before this attempt reserves one.
	remaining := cfg.MaxRequests - len(kept)
	if remaining < 0 {
		remaining = 0
	}

	if len(kept) >= cfg.MaxRequests {
		resetAt := kept[0].Add(cfg.Window)
		return rateLimitResult{
			limit:      cfg.MaxRequests,
			resetAt:    resetAt,
			retryAfter: retryAfterSeconds(resetAt.Sub(now)),
		}
	}

	e.stamps = append(kept, now)

	return rateLimitResult{
		allowed:   true,
		limit:     cfg.MaxRequests,
		remaining: remaining,
		resetAt:   e.stamps[0].Add(cfg.Window),
	}
}

// retryAfterSeconds rounds up so a Retry-After of 0 is never sent while the
// limit is still active.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// rateLimitMiddleware enforces sliding-window limits per client key.
//
// Clients sending X-User-ID are keyed by user ID under the authenticated
// limit; all others are keyed by IP under the anonymous limit. Every response
// carries X-RateLimit-* headers; denials get 429 with Retry-After.
func rateLimitMiddleware(rl *rateLimiter, anon, auth LimitConfig, trustProxy bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, cfg := clientKey(r, trustProxy, anon, auth)

			res := rl.check(key, cfg)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.resetAt.Unix(), 10))

			if !res.allowed {
				logger.Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
					"method", r.Method,
				)
				w.Header().Set("Retry-After", strconv.Itoa(res.retryAfter))
				writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
					Error:      "rate_limited",
					Message:    fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", res.retryAfter),
					RetryAfter: res.retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey derives the rate limit key and which limit applies.
func clientKey(r *http.Request, trustProxy bool, anon, auth LimitConfig) (string, LimitConfig) {
	if uid := strings.TrimSpace(r.Header.Get("X-User-ID")); uid != "" {
		return "user:" + uid, auth
	}
	return "ip:" + clientIP(r, trustProxy), anon
}

// clientIP extracts the client IP from the request.
//
// When trustProxy is true, checks X-Real-IP first (set by nginx/HAProxy),
// then X-Forwarded-For (first IP). Header values are validated with net.ParseIP
// to prevent injection of non-IP strings into rate limiter keys.
//
// When trustProxy is false, only uses RemoteAddr (safe default for direct exposure).
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// Prefer X-Real-IP (single value, set by reverse proxy)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}

		// Fall back to X-Forwarded-For (first IP is the client)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			raw := xff
			if first, _, ok := strings.Cut(xff, ","); ok {
				raw = first
			}
			if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
				return ip.String()
			}
		}
	}

	// Fall back to RemoteAddr (strip port)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
