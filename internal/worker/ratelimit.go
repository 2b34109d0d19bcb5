package worker

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a token bucket.
type RateLimiter struct {
	lastUpdate time.Time
	now        func() time.Time
	rate       float64
	burst      int
	tokens     float64
	requests   int64
	rejected   int64
	mu         sync.Mutex
}

// LimiterStats reports rate limiter activity.
type LimiterStats struct {
	Rate          float64 `json:"rate"`
	Burst         int     `json:"burst"`
	ActiveClients int     `json:"active_clients,omitempty"`
	Requests      int64   `json:"total_requests"`
	Rejected      int64   `json:"rejected"`
}

// NewRateLimiter allows rate requests per second with bursts of up to burst.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return newRateLimiter(rate, burst, time.Now)
}

func newRateLimiter(rate float64, burst int, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		now:        now,
		lastUpdate: now(),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.requests++

	now := rl.now()
	rl.tokens += now.Sub(rl.lastUpdate).Seconds() * rl.rate
	if rl.tokens > float64(rl.burst) {
		rl.tokens = float64(rl.burst)
	}
	rl.lastUpdate = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	rl.rejected++
	return false
}

// Stats returns rate limiter statistics.
func (rl *RateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return LimiterStats{
		Rate:     rl.rate,
		Burst:    rl.burst,
		Requests: rl.requests,
		Rejected: rl.rejected,
	}
}

// PerClientRateLimiter keeps one bucket per client and forgets idle clients.
type PerClientRateLimiter struct {
	lastCleanup     time.Time
	now             func() time.Time
	clients         map[string]*RateLimiter
	rate            float64
	burst           int
	cleanupInterval time.Duration
	maxIdleTime     time.Duration
	mu              sync.Mutex
}

// NewPerClientRateLimiter creates a per-client rate limiter.
func NewPerClientRateLimiter(rate float64, burst int) *PerClientRateLimiter {
	return &PerClientRateLimiter{
		rate:            rate,
		burst:           burst,
		now:             time.Now,
		clients:         make(map[string]*RateLimiter),
		cleanupInterval: 5 * time.Minute,
		maxIdleTime:     10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

func (pcrl *PerClientRateLimiter) getLimiter(key string) *RateLimiter {
	pcrl.mu.Lock()
	defer pcrl.mu.Unlock()

	if pcrl.now().Sub(pcrl.lastCleanup) > pcrl.cleanupInterval {
		pcrl.cleanupLocked()
	}

	limiter, exists := pcrl.clients[key]
	if !exists {
		limiter = newRateLimiter(pcrl.rate, pcrl.burst, pcrl.now)
		pcrl.clients[key] = limiter
	}
	return limiter
}

// cleanupLocked drops idle limiters. Caller holds pcrl.mu; limiter.mu is
// always taken after pcrl.mu.
func (pcrl *PerClientRateLimiter) cleanupLocked() {
	now := pcrl.now()
	for key, limiter := range pcrl.clients {
		limiter.mu.Lock()
		idle := now.Sub(limiter.lastUpdate)
		limiter.mu.Unlock()

		if idle > pcrl.maxIdleTime {
			delete(pcrl.clients, key)
		}
	}
	pcrl.lastCleanup = now
}

// Allow checks if a request from the given client should be allowed.
func (pcrl *PerClientRateLimiter) Allow(clientKey string) bool {
	return pcrl.getLimiter(clientKey).Allow()
}

// Stats returns aggregate statistics.
func (pcrl *PerClientRateLimiter) Stats() LimiterStats {
	pcrl.mu.Lock()
	stats := LimiterStats{
		Rate:          pcrl.rate,
		Burst:         pcrl.burst,
		ActiveClients: len(pcrl.clients),
	}
	limiters := make([]*RateLimiter, 0, len(pcrl.clients))
	for _, limiter := range pcrl.clients {
		limiters = append(limiters, limiter)
	}
	pcrl.mu.Unlock()

	for _, limiter := range limiters {
		limiter.mu.Lock()
		stats.Requests += limiter.requests
		stats.Rejected += limiter.rejected
		limiter.mu.Unlock()
	}
	return stats
}

// PerClientRateLimitMiddleware rate limits by client address. Run it after
// middleware.RealIP so RemoteAddr carries the real client.
func PerClientRateLimitMiddleware(limiter *PerClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port so one client maps to one bucket.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
