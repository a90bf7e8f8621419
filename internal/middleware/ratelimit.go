package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/rims/internal/config"
)

// takeToken refills a bucket by whole intervals and spends one token.
// KEYS[1] bucket; ARGV now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local now, cap, refill, every = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4])
local tokens, ts = tonumber(b[1]) or cap, tonumber(b[2]) or now

local n = math.floor(math.max(0, now - ts) / every)
if n > 0 then
    tokens = math.min(cap, tokens + n * refill)
    ts = ts + n * every
end

local ok, wait = 0, 0
if tokens >= 1 then
    ok = 1
    tokens = tokens - 1
else
    wait = every - (now - ts)
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {ok, tokens, wait}
`)

type bucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

type verdict struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

func (b bucket) take(ctx context.Context, key string) (verdict, error) {
	res, err := takeToken.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, fmt.Errorf("ratelimit: script returned %d values", len(res))
	}
	return verdict{
		allowed:   res[0] == 1,
		remaining: res[1],
		wait:      time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key with a Redis token bucket. With
// the limiter disabled or no Redis client it is a no-op. Redis errors let
// the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := bucket{cfg: cfg, rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key)
			if err != nil {
				requestLogger(c).WithError(err).WithField("key", key).Warn("ratelimit: skipped")
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if v.allowed {
				return next(c)
			}
			secs := int((v.wait + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too many requests",
				"retry_after": secs,
			})
		}
	}
}

// buildRateKey joins the prefix with the parts named by the key strategy:
// ip, user, ip_route, user_route or (default) ip_user_route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := map[string][]string{
		"ip":    {"ip", ip},
		"user":  {"user", currentUserID(c)},
		"route": {"route", c.Request().Method + " " + c.Path()},
	}
	strategy := strings.ToLower(cfg.KeyStrategy)
	switch strategy {
	case "ip", "user", "ip_route", "user_route":
	default:
		strategy = "ip_user_route"
	}
	key := []string{cfg.Prefix}
	for _, p := range strings.Split(strategy, "_") {
		key = append(key, parts[p]...)
	}
	return strings.Join(key, ":")
}
