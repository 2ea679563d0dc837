package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/xraph/skydesk/internal/config"
)

// tokenBucket refills and takes one token atomically. It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + intervals * refill_tokens)
	last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimit applies a per-actor token bucket kept in Redis. It is a no-op
// when disabled or when rdb is nil, and fails open when Redis errors.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)
			vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				logger.Warn("rate limit check failed", "key", key, "error", err)
				return next(c)
			}

			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000))
				h.Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many requests, slow down",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// rateKey buckets authenticated requests by actor and the rest by client IP.
func rateKey(prefix string, c echo.Context) string {
	if id := ActorID(c); id != 0 {
		return strings.Join([]string{prefix, "actor", strconv.FormatInt(id, 10)}, ":")
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, "ip", ip}, ":")
}
