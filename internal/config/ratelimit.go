package config

import (
    "strings"
    "time"
)

// Scopes for the submission limiter key.
const (
    LimitScopeCustomer = "customer" // one budget per user across every submission
    LimitScopeResource = "resource" // per user and concrete target, e.g. /v1/profiles/12
    LimitScopeRoute    = "route"    // per user and route pattern
)

// RateLimitConfig drives the token bucket applied to profile submissions
// and calendar mutations.  Customers and staff draw from separate budgets:
// an administrator filling a season of dates hits the calendar far more
// often than a household edits its profile.
type RateLimitConfig struct {
    Enabled       bool
    CustomerBurst int
    StaffBurst    int
    RefillEvery   time.Duration // one token per interval
    IdleTTL       time.Duration
    Scope         string
    Prefix        string
    Debug         bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:       envBool("RATE_LIMIT_ENABLED", true),
        CustomerBurst: envInt("RATE_LIMIT_CAPACITY", 10),
        StaffBurst:    envInt("RATE_LIMIT_STAFF_CAPACITY", 60),
        RefillEvery:   envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        IdleTTL:       envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Scope:         strings.ToLower(envStr("RATE_LIMIT_SCOPE", LimitScopeResource)),
        Prefix:        envStr("RATE_LIMIT_PREFIX", "wp:rl"),
        Debug:         envBool("RATE_LIMIT_DEBUG", false),
    }
    return cfg.normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.CustomerBurst < 1 {
        c.CustomerBurst = 1
    }
    if c.StaffBurst < c.CustomerBurst {
        c.StaffBurst = c.CustomerBurst
    }
    if c.RefillEvery <= 0 {
        c.RefillEvery = time.Second
    }
    // the bucket must outlive a full refill or idle users start over empty
    if full := time.Duration(c.StaffBurst) * c.RefillEvery; c.IdleTTL < full {
        c.IdleTTL = full
    }
    switch c.Scope {
    case LimitScopeCustomer, LimitScopeResource, LimitScopeRoute:
    default:
        c.Scope = LimitScopeResource
    }
    return c
}
