package config

import "time"

// RateLimitConfig configures the Redis token bucket. Keys are read with
// the RATE_LIMIT_ prefix, e.g. RATE_LIMIT_CAPACITY.
type RateLimitConfig struct {
	Enabled        bool          `envconfig:"ENABLED" default:"true"`
	Capacity       int           `envconfig:"CAPACITY" default:"60"`
	RefillTokens   int           `envconfig:"REFILL_TOKENS" default:"1"`
	RefillInterval time.Duration `envconfig:"REFILL_INTERVAL" default:"1s"`
	TTL            time.Duration `envconfig:"TTL" default:"10m"`
	// KeyStrategy is one of ip, user, ip_route, user_route, ip_user_route.
	KeyStrategy string `envconfig:"KEY_STRATEGY" default:"ip_user_route"`
	Prefix      string `envconfig:"PREFIX" default:"rl"`
}

func (r *RateLimitConfig) normalize() {
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	// Keep a bucket alive long enough to refill several times.
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
}
