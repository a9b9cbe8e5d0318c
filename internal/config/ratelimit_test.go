package config

import (
    "testing"
    "time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    t.Setenv("RATE_LIMIT_SCOPE", "")
    cfg := LoadRateLimitConfig()
    if cfg.Scope != LimitScopeResource {
        t.Fatalf("default scope = %q", cfg.Scope)
    }
    if cfg.StaffBurst < cfg.CustomerBurst {
        t.Fatalf("staff budget %d below customer budget %d", cfg.StaffBurst, cfg.CustomerBurst)
    }
}

func TestRateLimitConfigNormalize(t *testing.T) {
    cfg := RateLimitConfig{
        CustomerBurst: 0,
        StaffBurst:    0,
        RefillEvery:   -time.Second,
        IdleTTL:       time.Second,
        Scope:         "everything",
    }.normalize()
    if cfg.CustomerBurst != 1 || cfg.StaffBurst != 1 {
        t.Fatalf("bursts = %d/%d, want 1/1", cfg.CustomerBurst, cfg.StaffBurst)
    }
    if cfg.RefillEvery != time.Second {
        t.Fatalf("refill = %s", cfg.RefillEvery)
    }
    if cfg.IdleTTL != time.Second {
        t.Fatalf("idle ttl = %s, want one full refill", cfg.IdleTTL)
    }
    if cfg.Scope != LimitScopeResource {
        t.Fatalf("unknown scope kept: %q", cfg.Scope)
    }

    cfg = RateLimitConfig{CustomerBurst: 5, StaffBurst: 40, RefillEvery: time.Minute, Scope: "customer"}.normalize()
    if cfg.IdleTTL != 40*time.Minute || cfg.Scope != LimitScopeCustomer {
        t.Fatalf("got %+v", cfg)
    }
}

func TestEnvBoolSpellings(t *testing.T) {
    t.Setenv("WP_FLAG", " Yes ")
    if !envBool("WP_FLAG", false) {
        t.Fatal("expected true")
    }
    t.Setenv("WP_FLAG", "off")
    if envBool("WP_FLAG", true) {
        t.Fatal("expected false")
    }
    t.Setenv("WP_FLAG", "maybe")
    if !envBool("WP_FLAG", true) {
        t.Fatal("unrecognised value must keep the default")
    }
}
