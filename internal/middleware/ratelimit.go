package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/waste-pickup-service/internal/config"
    "github.com/iliyamo/waste-pickup-service/internal/model"
    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// bucketScript takes one token from the bucket in KEYS[1], first crediting
// whole refill intervals elapsed since the last refill.  The reply is
// {allowed, tokens left, ms until the next token}.
var bucketScript = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local refilled = tonumber(redis.call('HGET', KEYS[1], 'refilled_ms'))
local now, burst, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4])

if tokens == nil or refilled == nil then
    tokens, refilled = burst, now
else
    local earned = math.floor(math.max(0, now - refilled) / every)
    if earned > 0 then
        tokens = math.min(burst, tokens + earned)
        refilled = refilled + earned * every
    end
end

local allowed, wait = 0, 0
if tokens > 0 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, every - (now - refilled))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_ms', refilled)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// submissionLimiter throttles writes per authenticated user.  Customers
// and staff get separate burst sizes; the key scope decides whether edits
// to different profiles or calendar entries share one budget.
type submissionLimiter struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
    log logger.Logger
}

// NewSubmissionLimiter limits profile submissions and calendar mutations
// with a token bucket kept in Redis, so every replica shares the same
// budget.  With Redis missing or failing the request goes through.
func NewSubmissionLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log logger.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    l := &submissionLimiter{cfg: cfg, rdb: rdb, log: log}
    return l.middleware
}

func (l *submissionLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        key := l.key(c)
        burst := l.burst(c)
        reply, err := bucketScript.Run(c.Request().Context(), l.rdb, []string{key},
            time.Now().UnixMilli(),
            burst,
            l.cfg.RefillEvery.Milliseconds(),
            int64(l.cfg.IdleTTL/time.Second),
        ).Int64Slice()
        if err != nil || len(reply) != 3 {
            l.log.Warn("submission limiter unavailable", "key", key, "error", err)
            return next(c)
        }
        allowed, left, waitMs := reply[0] == 1, reply[1], reply[2]

        h := c.Response().Header()
        h.Set("X-RateLimit-Limit", strconv.Itoa(burst))
        h.Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
        if l.cfg.Debug {
            h.Set("X-RateLimit-Key", key)
        }
        if allowed {
            return next(c)
        }

        secs := retryAfterSeconds(waitMs)
        h.Set("Retry-After", strconv.Itoa(secs))
        l.log.Info("submission throttled", "key", key, "user_id", requestUser(c), "retry_after", secs)
        return c.JSON(http.StatusTooManyRequests, echo.Map{
            "error":       "rate limit exceeded",
            "retry_after": secs,
        })
    }
}

// key is prefix:role:user followed by the scope's target.  Customer and
// staff buckets never collide even when an id is reused across roles.
func (l *submissionLimiter) key(c echo.Context) string {
    role := strings.ToLower(requestRole(c))
    parts := []string{l.cfg.Prefix, role, requestUser(c)}
    switch l.cfg.Scope {
    case config.LimitScopeCustomer:
    case config.LimitScopeRoute:
        parts = append(parts, c.Request().Method, c.Path())
    default:
        parts = append(parts, c.Request().Method, c.Request().URL.Path)
    }
    return strings.Join(parts, ":")
}

func (l *submissionLimiter) burst(c echo.Context) int {
    if requestRole(c) == model.RoleNameCustomer {
        return l.cfg.CustomerBurst
    }
    return l.cfg.StaffBurst
}

func retryAfterSeconds(waitMs int64) int {
    if waitMs <= 0 {
        return 1
    }
    return int(math.Ceil(float64(waitMs) / 1000))
}
