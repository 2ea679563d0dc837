package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/skydesk/internal/config"
	"github.com/xraph/skydesk/internal/middleware"
)

const secret = "test-secret"

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, strconv.FormatInt(middleware.ActorID(c), 10)+"/"+middleware.Role(c))
	}, mw...)
	return e
}

func get(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := newEcho(middleware.JWTAuth(secret))

	valid, err := middleware.NewToken(secret, 123456789012345678, middleware.RoleStaff)
	require.NoError(t, err)
	forged, err := middleware.NewToken("other-secret", 1, middleware.RoleStaff)
	require.NoError(t, err)
	expired, err := middleware.NewToken(secret, 1, "", func(c *middleware.Claims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	})
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString([]byte(secret))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"valid", valid, http.StatusOK, "123456789012345678/staff"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"forged", forged, http.StatusUnauthorized, ""},
		{"expired", expired, http.StatusUnauthorized, ""},
		{"non-numeric subject", badSubject, http.StatusUnauthorized, ""},
		{"wrong algorithm", wrongAlg, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := newEcho(middleware.JWTAuth(secret), middleware.RequireRole(middleware.RoleStaff))

	staff, err := middleware.NewToken(secret, 7, middleware.RoleStaff)
	require.NoError(t, err)
	member, err := middleware.NewToken(secret, 8, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(e, staff).Code)
	assert.Equal(t, http.StatusForbidden, get(e, member).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := newEcho(middleware.RateLimit(cfg, nil, logger))

	for range 5 {
		assert.Equal(t, http.StatusOK, get(e, "").Code)
	}
}

func TestRateLimitRedis(t *testing.T) {
	addr := os.Getenv("SKYDESK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SKYDESK_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Minute,
		Prefix:         "skydesk:test:" + strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := newEcho(middleware.JWTAuth(secret), middleware.RateLimit(cfg, rdb, logger))

	token, err := middleware.NewToken(secret, 99, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(e, token).Code)
	assert.Equal(t, http.StatusOK, get(e, token).Code)

	rec := get(e, token)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other, err := middleware.NewToken(secret, 100, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(e, other).Code, "buckets are per actor")
}
