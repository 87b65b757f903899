package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowSpendsBurstPerKey(t *testing.T) {
	l := NewLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.Len())
}

func TestSetLimitOverridesDefaults(t *testing.T) {
	l := NewLimiterWithDefaults()
	l.SetLimit("assistant", 0.001, 1)

	assert.True(t, l.Allow("assistant"))
	assert.False(t, l.Allow("assistant"))
}

func TestWaitHonoursContext(t *testing.T) {
	l := NewLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	require.NoError(t, l.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestPrune(t *testing.T) {
	l := NewLimiterWithDefaults()
	l.Allow("a")
	l.Allow("b")

	assert.Equal(t, 0, l.Prune(time.Hour))
	assert.Equal(t, 2, l.Prune(-time.Second))
	assert.Equal(t, 0, l.Len())
}

func TestPruneKeepsOverrides(t *testing.T) {
	l := NewLimiterWithDefaults()
	l.SetLimit("route-assistant", 1, 1)
	l.Allow("10.0.0.1")

	assert.Equal(t, 1, l.Prune(-time.Second))
	assert.Equal(t, 1, l.Len())

	lim := l.GetLimiter("route-assistant")
	assert.Equal(t, 1.0, float64(lim.Limit()))
	assert.Equal(t, 1, lim.Burst())
}

func TestPruneSparesRecentlyUsedKeys(t *testing.T) {
	l := NewLimiterWithDefaults()
	l.Allow("old")
	l.Allow("fresh")

	l.mu.RLock()
	l.limiters["old"].lastSeen.Store(time.Now().Add(-time.Hour).UnixNano())
	l.mu.RUnlock()

	l.Allow("fresh")
	assert.Equal(t, 1, l.Prune(time.Minute))

	l.mu.RLock()
	_, freshKept := l.limiters["fresh"]
	_, oldKept := l.limiters["old"]
	l.mu.RUnlock()
	assert.True(t, freshKept)
	assert.False(t, oldKept)
}

func TestConcurrentHitsAndPrune(t *testing.T) {
	l := NewLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000})
	l.Allow("shared")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.GetLimiter("shared")
				l.Prune(time.Hour)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, l.Len())
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	l := NewLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := Middleware(l)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/search_flights", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)

	rec := call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"error":"rate_limited"`)
}
