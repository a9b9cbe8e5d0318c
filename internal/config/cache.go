package config

import "time"

// CacheConfig defines settings for the Redis response cache placed in front
// of the region and ward lookup endpoints.  Those responses are identical
// for every caller, so the key never includes the user.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables.  Region data changes
// rarely, so the default TTL is ten minutes.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 10*time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "wp:lookup"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 10 * time.Minute
    }
    return cfg
}
