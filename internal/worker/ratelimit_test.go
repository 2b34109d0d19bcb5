package worker

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	clock := newFakeClock()
	rl := newRateLimiter(2, 3, clock.Now)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(), "burst request %d", i)
	}
	assert.False(t, rl.Allow(), "bucket should be empty")

	clock.Advance(500 * time.Millisecond)
	assert.True(t, rl.Allow(), "one token refilled after half a second at 2/s")
	assert.False(t, rl.Allow())

	stats := rl.Stats()
	assert.Equal(t, int64(6), stats.Requests)
	assert.Equal(t, int64(2), stats.Rejected)
}

func TestRateLimiter_RefillCapsAtBurst(t *testing.T) {
	clock := newFakeClock()
	rl := newRateLimiter(10, 2, clock.Now)

	clock.Advance(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestPerClientRateLimiter_IsolatesClients(t *testing.T) {
	pcrl := NewPerClientRateLimiter(1, 1)
	pcrl.now = newFakeClock().Now

	assert.True(t, pcrl.Allow("10.0.0.1"))
	assert.False(t, pcrl.Allow("10.0.0.1"))
	assert.True(t, pcrl.Allow("10.0.0.2"))

	stats := pcrl.Stats()
	assert.Equal(t, 2, stats.ActiveClients)
	assert.Equal(t, int64(3), stats.Requests)
	assert.Equal(t, int64(1), stats.Rejected)
}

func TestPerClientRateLimiter_ForgetsIdleClients(t *testing.T) {
	clock := newFakeClock()
	pcrl := NewPerClientRateLimiter(1, 1)
	pcrl.now = clock.Now
	pcrl.lastCleanup = clock.Now()

	pcrl.Allow("10.0.0.1")
	clock.Advance(11 * time.Minute)
	pcrl.Allow("10.0.0.2")

	assert.Equal(t, 1, pcrl.Stats().ActiveClients)
}

func TestPerClientRateLimitMiddleware(t *testing.T) {
	pcrl := NewPerClientRateLimiter(1, 1)
	pcrl.now = newFakeClock().Now
	handler := PerClientRateLimitMiddleware(pcrl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/resonance/dna", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, send("192.0.2.1:5000").Code)

	// Same host on another port shares the bucket.
	rr := send("192.0.2.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("192.0.2.2:5000").Code)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"192.0.2.1:5000", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.addr
		assert.Equal(t, tt.want, clientKey(req), tt.addr)
	}
}
