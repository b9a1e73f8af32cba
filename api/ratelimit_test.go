package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	now := time.Date(2023, 3, 18, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000"), "other clients are unaffected")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5003"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("a")
	assert.Len(t, rl.clients, 1)

	now = now.Add(2 * limiterIdleTTL)
	rl.allow("b")
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "b")
}
