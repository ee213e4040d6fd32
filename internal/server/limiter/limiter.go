// Package limiter counts failed admin logins per client IP and locks an IP
// out once it reaches the failure threshold.
package limiter

import (
	"context"
	"time"
)

const (
	DefaultMaxFailures = 5
	DefaultLockout     = 15 * time.Minute
	DefaultRetention   = 24 * time.Hour
)

// Status describes an IP's standing after a Check or RecordFailure.
type Status struct {
	Blocked    bool
	RetryAfter time.Duration
	Failures   int
	Remaining  int
}

// RetryAfterSeconds is RetryAfter rounded up to whole seconds.
func (s Status) RetryAfterSeconds() int {
	if s.RetryAfter <= 0 {
		return 0
	}
	secs := s.RetryAfter / time.Second
	if s.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// Limiter is the login attempt limiter. Implementations must be safe for
// concurrent use. Every failure at or beyond the threshold re-arms the
// lockout. RecordSuccess clears the counter; an IP with no failure for the
// retention period is forgotten.
type Limiter interface {
	Check(ctx context.Context, ip string) (Status, error)
	RecordFailure(ctx context.Context, ip string) (Status, error)
	RecordSuccess(ctx context.Context, ip string) error
}

// Options tunes the threshold and windows. Zero values fall back to
// defaults. Retention never drops below Lockout.
type Options struct {
	MaxFailures int
	Lockout     time.Duration
	Retention   time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxFailures <= 0 {
		o.MaxFailures = DefaultMaxFailures
	}
	if o.Lockout <= 0 {
		o.Lockout = DefaultLockout
	}
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.Retention < o.Lockout {
		o.Retention = o.Lockout
	}
	return o
}

func remaining(max, failures int) int {
	if failures >= max {
		return 0
	}
	return max - failures
}
