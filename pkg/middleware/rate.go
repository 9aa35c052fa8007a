// Package middleware provides the HTTP middleware stack: recovery, request
// logging, CORS, rate limiting and token authentication.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/pantry/pkg/response"
)

// window tracks a fixed-window request count for one client.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter limits each client IP to max requests per period.
type RateLimiter struct {
	max    int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter starts a limiter and its eviction loop. Call Stop when done.
func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		max:     max,
		period:  period,
		clients: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Allow records a request from key and reports whether it is within limits.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(rl.period)}
		rl.clients[key] = w
	}
	w.count++
	return w.count <= rl.max
}

// Middleware rejects clients over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the eviction loop.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for k, w := range rl.clients {
				if now.After(w.resetAt) {
					delete(rl.clients, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
