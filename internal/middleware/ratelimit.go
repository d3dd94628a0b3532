package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window counts requests of one client until it expires.
type window struct {
	count int
	until time.Time
}

// fixedWindow is a per-key fixed-window counter. Expired windows are swept
// whenever the map grows past sweepAt entries.
type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	windows map[string]*window
	sweepAt int
	now     func() time.Time
}

func newFixedWindow(limit int, per time.Duration) *fixedWindow {
	return &fixedWindow{limit: limit, per: per, windows: make(map[string]*window), sweepAt: 1024, now: time.Now}
}

// allow reports whether key may proceed and, if not, how long until its
// window resets.
func (f *fixedWindow) allow(key string) (bool, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	w, ok := f.windows[key]
	if !ok || now.After(w.until) {
		if len(f.windows) >= f.sweepAt {
			f.sweep(now)
		}
		w = &window{until: now.Add(f.per)}
		f.windows[key] = w
	}
	if w.count >= f.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	return true, 0
}

func (f *fixedWindow) sweep(now time.Time) {
	for key, w := range f.windows {
		if now.After(w.until) {
			delete(f.windows, key)
		}
	}
	if len(f.windows) >= f.sweepAt {
		f.sweepAt *= 2
	}
}

// RateLimit admits limit requests per client IP in each window of length per.
// A non-positive limit disables it.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newFixedWindow(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.allow(clientIPForRateLimit(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","message":"too many runs, retry later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
