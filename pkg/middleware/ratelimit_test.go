package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, rps float64, burst int) *RateLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, rps, burst, time.Minute, discardLogger())
}

func toggleRequest(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/favorites/m-1", nil)
	req.RemoteAddr = remote
	return req
}

func TestRateLimiter_WithinBurst(t *testing.T) {
	h := newTestLimiter(t, 1, 5).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, toggleRequest("192.168.1.1:12345"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimiter_ExceededReturns429(t *testing.T) {
	h := newTestLimiter(t, 0.001, 2).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, toggleRequest("10.0.0.1:1"))
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_IndependentPerIP(t *testing.T) {
	rl := newTestLimiter(t, 0.001, 1)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_EvictsIdle(t *testing.T) {
	rl := newTestLimiter(t, 1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.nowFunc = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.tracked())

	now = now.Add(45 * time.Second)
	rl.evictIdle()
	assert.Equal(t, 1, rl.tracked())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "172.16.0.9:5555"
	assert.Equal(t, "172.16.0.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "garbage, 198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", ClientIP(req))
}
