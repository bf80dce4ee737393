// Package ratelimit implements fixed-window counters keyed by arbitrary identity strings.
//
// Check never consumes quota. Callers evaluate every key that applies to a request and
// call Increment only once the request has been accepted.
package ratelimit

import (
	"context"
	"time"
)

// Config bounds the number of accepted actions per key within one window
type Config struct {
	Max    int
	Window time.Duration
}

// Result is the outcome of a Check. A denial is a normal result, not an error.
type Result struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
}

// Limiter is implemented by the in-memory and Redis backends
type Limiter interface {
	Check(ctx context.Context, key string, cfg Config) (Result, error)
	Increment(ctx context.Context, key string, cfg Config) error
}

// Key prefixes and the sentinel used when a client identity is unavailable
const (
	GlobalKey         = "global"
	IPKeyPrefix       = "ip:"
	FingerprintPrefix = "fp:"
	UnknownIdentity   = "unknown"
)

// Policies holds the three limiter configurations applied to question submission
type Policies struct {
	Global      Config
	PerIP       Config
	Fingerprint Config
}

// DefaultPolicies returns the production submission limits
func DefaultPolicies() Policies {
	return Policies{
		Global:      Config{Max: 100, Window: time.Minute},
		PerIP:       Config{Max: 20, Window: time.Hour},
		Fingerprint: Config{Max: 10, Window: time.Hour},
	}
}

// IPKey returns the limiter key for a client address
func IPKey(ip string) string {
	if ip == "" {
		ip = UnknownIdentity
	}
	return IPKeyPrefix + ip
}

// FingerprintKey returns the limiter key for a fingerprint and whether it should be checked at all
func FingerprintKey(fingerprint string) (string, bool) {
	if fingerprint == "" || fingerprint == UnknownIdentity {
		return "", false
	}
	return FingerprintPrefix + fingerprint, true
}

// retryAfterSeconds rounds the remaining window up to whole seconds
func retryAfterSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}
