package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/waste-pickup-service/internal/config"
    "github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// cachedLookup is what the cache keeps for one lookup response.  Lookups
// always answer JSON with 200, so the content type is the only header
// worth replaying.
type cachedLookup struct {
    ContentType string          `json:"content_type"`
    Body        json.RawMessage `json:"body"`
}

// bodyRecorder tees the response body while it is written to the client
// and gives up on keeping a copy once it exceeds max bytes.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    max      int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.max > 0 && r.buf.Len()+len(b) > r.max {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// lookupKind names the region list a route serves: the last static
// segment of the pattern, so /v1/states/:id/districts is "districts".
func lookupKind(route string) string {
    segs := strings.Split(strings.Trim(route, "/"), "/")
    for i := len(segs) - 1; i >= 0; i-- {
        if s := segs[i]; s != "" && !strings.HasPrefix(s, ":") && s != "*" {
            return s
        }
    }
    return "lookup"
}

// lookupCacheKey is prefix:kind:sha1(path?query).  Keeping the kind in
// clear text lets an operator drop one list with a single SCAN pattern.
func lookupCacheKey(prefix string, c echo.Context) string {
    u := c.Request().URL
    sum := sha1.Sum([]byte(u.Path + "?" + u.RawQuery))
    return prefix + ":" + lookupKind(c.Path()) + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache caches successful GET responses of the region and ward
// lookups in Redis.  Their answers do not depend on the caller.  Redis
// errors fall back to serving from the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log logger.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            key := lookupCacheKey(cfg.Prefix, c)

            raw, err := rdb.Get(c.Request().Context(), key).Bytes()
            switch {
            case err == nil:
                var hit cachedLookup
                if json.Unmarshal(raw, &hit) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
                }
                log.Warn("dropping unreadable cache entry", "key", key)
            case !errors.Is(err, redis.Nil):
                log.Warn("response cache read failed", "key", key, "error", err)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow || !json.Valid(rec.buf.Bytes()) {
                return nil
            }

            payload, err := json.Marshal(cachedLookup{
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
            })
            if err == nil {
                // the request context may already be cancelled once the client has its answer
                err = rdb.Set(context.WithoutCancel(c.Request().Context()), key, payload, cfg.TTL).Err()
            }
            if err != nil {
                log.Warn("response cache write failed", "key", key, "error", err)
            }
            return nil
        }
    }
}
