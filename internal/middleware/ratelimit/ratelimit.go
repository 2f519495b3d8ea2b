// Package ratelimit caps how many requests one client may make per minute.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"walletwhisper/internal/cache"
)

const window = time.Minute

// Limiter counts requests per client in fixed one-minute windows. Windows
// live in an LRU cache so idle clients age out and memory stays bounded.
type Limiter struct {
	mu      sync.Mutex
	windows *cache.LRUCache[clientWindow]
	limit   int
	now     func() time.Time
	hits    atomic.Int64
}

type clientWindow struct {
	start    time.Time
	requests int
}

type Config struct {
	RequestsPerMinute int
	// MaxClients bounds how many client windows are tracked at once.
	MaxClients int
	// IdleTTL drops a client's window after this long without requests.
	IdleTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	defaults := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = defaults.MaxClients
	}
	if config.IdleTTL < window {
		config.IdleTTL = defaults.IdleTTL
	}
	return &Limiter{
		windows: cache.NewLRUCache[clientWindow](config.MaxClients, config.IdleTTL),
		limit:   config.RequestsPerMinute,
		now:     time.Now,
	}
}

// WithClock swaps the time source for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	l.windows.WithClock(now)
	return l
}

// Allow records a request from clientIP and reports whether it is within
// the limit for the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows.Get(clientIP)
	if !ok || now.Sub(w.start) >= window {
		w = clientWindow{start: now}
	}
	w.requests++
	l.windows.Set(clientIP, w)

	if w.requests > l.limit {
		l.hits.Add(1)
		return false
	}
	return true
}

// RetryAfter is how long clientIP must wait for its window to reset.
func (l *Limiter) RetryAfter(clientIP string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows.Get(clientIP)
	if !ok {
		return 0
	}
	if d := window - l.now().Sub(w.start); d > 0 {
		return d
	}
	return 0
}

// CleanExpired drops idle client windows; register the limiter with a
// cache.Manager to run it periodically.
func (l *Limiter) CleanExpired() int {
	return l.windows.CleanExpired()
}

func (l *Limiter) ActiveClients() int {
	return l.windows.Size()
}

// Rejected is the number of requests refused so far.
func (l *Limiter) Rejected() int64 {
	return l.hits.Load()
}

// Middleware limits the requests matched by limited; others pass through.
// onLimit renders the refusal; when nil a plain 429 is written.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, limited func(*http.Request) bool, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limited != nil && !limited(r) {
				next.ServeHTTP(w, r)
				return
			}
			clientIP := extractIP(r)
			if !l.Allow(clientIP) {
				secs := int(l.RetryAfter(clientIP).Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MutationsOnly limits everything except safe methods.
func MutationsOnly(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
