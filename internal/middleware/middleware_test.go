package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-reservation/internal/config"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.7:5555"
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestNewTokenBucket_PassThroughWithoutRedis(t *testing.T) {
	log, _ := test.NewNullLogger()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, log)

	c, rec := newContext(http.MethodGet, "/api/availability/S1")
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.7"},
		{"phone", "rl:phone:0411"},
		{"route", "rl:route:POST /api/book/:showNumber"},
		{"ip_route", "rl:ip:10.0.0.7:route:POST /api/book/:showNumber"},
		{"phone_route", "rl:phone:0411:route:POST /api/book/:showNumber"},
		{"", "rl:ip:10.0.0.7:phone:0411:route:POST /api/book/:showNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/book/S1?phoneNumber=0411")
			c.SetPath("/api/book/:showNumber")
			cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}
			assert.Equal(t, tt.want, buildRateKey(cfg, c))
		})
	}
}

func TestBuildRateKey_AnonymousPhone(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/view/S1")
	c.SetPath("/api/view/:showNumber")
	assert.Equal(t, "rl:phone:anon", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "phone"}, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64(4))
	assert.Equal(t, int64(5), asInt64(5.9))
	assert.Equal(t, int64(6), asInt64("6"))
	assert.Equal(t, int64(0), asInt64("x"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestRequestID(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/healthz")
		var seen string
		err := RequestID()(func(c echo.Context) error {
			seen = GetRequestID(c)
			return nil
		})(c)
		require.NoError(t, err)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/healthz")
		c.Request().Header.Set(RequestIDHeader, "abc-123")
		err := RequestID()(func(c echo.Context) error { return nil })(c)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", GetRequestID(c))
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestGetRequestID_Unset(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	assert.Empty(t, GetRequestID(c))
}

func TestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()

	c, rec := newContext(http.MethodGet, "/api/view/S9")
	c.Set(requestIDKey, "rid-1")
	err := Logger(log)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "rid-1", entry.Data["request_id"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/api/view/S9", entry.Data["path"])
}

func TestLogger_Success(t *testing.T) {
	log, hook := test.NewNullLogger()
	c, _ := newContext(http.MethodGet, "/healthz")
	err := Logger(log)(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}
