package limiter

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count        int
	lastFailure  time.Time
	lockoutUntil time.Time
}

// MemoryLimiter keeps per-IP state in process memory. State is lost on
// restart and is not shared between server instances. Records idle for the
// retention period are swept on later failures.
type MemoryLimiter struct {
	opts      Options
	mu        sync.Mutex
	records   map[string]*record
	nextSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(opts Options) *MemoryLimiter {
	return &MemoryLimiter{
		opts:    opts.withDefaults(),
		records: make(map[string]*record),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Check(_ context.Context, ip string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.statusLocked(ip, m.now()), nil
}

func (m *MemoryLimiter) RecordFailure(_ context.Context, ip string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	rec := m.recordLocked(ip, now)
	if rec == nil {
		rec = &record{}
		m.records[ip] = rec
	}
	rec.count++
	rec.lastFailure = now
	if rec.count >= m.opts.MaxFailures {
		rec.lockoutUntil = now.Add(m.opts.Lockout)
	}

	return m.statusLocked(ip, now), nil
}

func (m *MemoryLimiter) RecordSuccess(_ context.Context, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, ip)
	return nil
}

// Len reports how many IPs are currently tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryLimiter) expired(rec *record, now time.Time) bool {
	return !now.Before(rec.lockoutUntil) && now.Sub(rec.lastFailure) >= m.opts.Retention
}

// recordLocked returns the live record for ip, dropping it when expired.
func (m *MemoryLimiter) recordLocked(ip string, now time.Time) *record {
	rec, ok := m.records[ip]
	if !ok {
		return nil
	}
	if m.expired(rec, now) {
		delete(m.records, ip)
		return nil
	}
	return rec
}

func (m *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for ip, rec := range m.records {
		if m.expired(rec, now) {
			delete(m.records, ip)
		}
	}
	m.nextSweep = now.Add(m.opts.Lockout)
}

func (m *MemoryLimiter) statusLocked(ip string, now time.Time) Status {
	rec := m.recordLocked(ip, now)
	if rec == nil {
		return Status{Remaining: m.opts.MaxFailures}
	}

	st := Status{Failures: rec.count, Remaining: remaining(m.opts.MaxFailures, rec.count)}
	if now.Before(rec.lockoutUntil) {
		st.Blocked = true
		st.RetryAfter = rec.lockoutUntil.Sub(now)
	}
	return st
}
