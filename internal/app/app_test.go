package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripquery/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)
}

func TestServerEndToEnd(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.CacheEnabled = true
	cfg.RedisHost = srv.Host()
	cfg.RedisPort = srv.Port()

	a, err := New(context.Background(), cfg, WithClock(fixedClock))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	e := a.Echo()
	body := `{"query": "from New York to Istanbul on June 15, 2025 returning June 29, 2025 for 2 adults"}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/ai_flight_search", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "/flights/JFK-IST/2025-06-15/2025-06-29/2adults")
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	}
	assert.Len(t, srv.Keys(), 1)
}

func TestServerRateLimitsClients(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1

	a, err := New(context.Background(), cfg, WithClock(fixedClock))
	require.NoError(t, err)
	e := a.Echo()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/search_flights", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestNewFailsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheEnabled = true
	cfg.RedisHost = "127.0.0.1"
	cfg.RedisPort = "1"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRejectsBadBookingStyle(t *testing.T) {
	cfg := testConfig(t)
	cfg.BookingStyle = "expedia"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
