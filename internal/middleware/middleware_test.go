package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRecoverJSONLeavesWrittenResponse(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("after write")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRecoverJSONPassthrough(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		require.True(t, rl.allow("ip-1"), "request %d", i)
	}
	assert.False(t, rl.allow("ip-1"))
	// Other keys are unaffected.
	assert.True(t, rl.allow("ip-2"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.allow("ip-1"), "window slid, quota restored")
}

func TestRateLimitAPISkipsNonAPIPaths(t *testing.T) {
	calls := 0
	h := RateLimitAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	// Far beyond the per-IP quota: non-API paths are never throttled.
	for i := 0; i < rateLimitMaxIP+10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, rateLimitMaxIP+10, calls)
}

func TestRateLimitAPIThrottles(t *testing.T) {
	h := RateLimitAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var last int
	for i := 0; i < rateLimitMaxIP+1; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
		req.Header.Set("X-Real-Ip", "10.9.9.9")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
