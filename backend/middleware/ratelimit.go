// ABOUTME: Fixed-window rate limiting for the storefront BFF
// ABOUTME: Login and signup are limited per client IP, everything else per session or IP

package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/markalston/storefront/backend/models"
)

type window struct {
	hits    int
	resetAt time.Time
}

// Limiter counts requests per key in fixed windows. One limiter serves
// one rate class; name shows up in logs.
type Limiter struct {
	name   string
	limit  int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewLimiter allows limit requests per key every period
func NewLimiter(name string, limit int, period time.Duration) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records a request for key. When the key is over its limit it
// returns false and the time left until its window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.period {
		for k, w := range l.windows {
			if !now.Before(w.resetAt) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{hits: 1, resetAt: now.Add(l.period)}
		return true, 0
	}
	if w.hits >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	return true, 0
}

// Len reports how many keys hold a window
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// ClientIP keys a request by the first X-Forwarded-For hop when it parses
// as an IP, else by RemoteAddr. The BFF runs behind the storefront's proxy.
func ClientIP(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return "ip:" + ip.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// SessionOrIP keys signed-in shoppers by a digest of their token, so
// shoppers sharing a NAT keep separate quotas. Anonymous requests use ClientIP.
func SessionOrIP(r *http.Request) string {
	if token := GetToken(r); token != "" {
		sum := sha256.Sum256([]byte(token))
		return "session:" + hex.EncodeToString(sum[:8])
	}
	return ClientIP(r)
}

// AuthLimit guards the credential endpoints (login, signup) per client IP
func AuthLimit(l *Limiter) func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(l, ClientIP)
}

// SessionLimit guards catalog, page and logout routes per session or IP
func SessionLimit(l *Limiter) func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(l, SessionOrIP)
}

type rateLimitedResponse struct {
	models.ErrorResponse
	RetryAfter int `json:"retry_after"`
}

// RateLimit rejects requests over the limiter's quota with 429. A nil
// limiter disables limiting.
func RateLimit(l *Limiter, key func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if l == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ok, retryAfter := l.Allow(k)
			if ok {
				next(w, r)
				return
			}

			secs := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("Rate limit exceeded",
				"class", l.name,
				"key", k,
				"path", sanitizePath(r.URL.Path),
				"retry_after", secs,
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(rateLimitedResponse{
				ErrorResponse: models.ErrorResponse{
					Error: "Too many requests. Please try again later",
					Code:  http.StatusTooManyRequests,
				},
				RetryAfter: secs,
			})
		}
	}
}
