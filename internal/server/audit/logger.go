// Package audit keeps the admin security trail: bounded in-memory lists of
// events and login attempts, derived statistics, and best-effort encrypted
// mirrors to external stores.
package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/segmentio/ksuid"
)

const (
	DefaultMaxEvents   = 1000
	DefaultMaxAttempts = 500

	// BlockedIPThreshold is the failed-attempt count at which stats report an IP as blocked.
	BlockedIPThreshold = 5

	mirrorTimeout = 10 * time.Second
	locateTimeout = 5 * time.Second
)

// Mirror receives a copy of every event. Errors are logged by the Logger
// and never reach the caller of Append.
type Mirror interface {
	Name() string
	Mirror(ctx context.Context, e Event) error
}

// Locator resolves an IP to a human readable place, or "" when unknown.
type Locator interface {
	Locate(ctx context.Context, ip string) string
}

type Options struct {
	MaxEvents   int
	MaxAttempts int
	Mirrors     []Mirror
	Locator     Locator
}

// Logger is safe for concurrent use. The in-memory lists are the primary
// copy of the trail; mirrors are fire-and-forget.
type Logger struct {
	log         logging.Logger
	maxEvents   int
	maxAttempts int
	mirrors     []Mirror
	locator     Locator
	now         func() time.Time

	mu       sync.RWMutex
	events   []Event
	attempts []attemptEntry
	seq      uint64

	inflight sync.WaitGroup
}

func NewLogger(log logging.Logger, opts Options) *Logger {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = DefaultMaxEvents
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Logger{
		log:         log.With("module", "audit"),
		maxEvents:   opts.MaxEvents,
		maxAttempts: opts.MaxAttempts,
		mirrors:     opts.Mirrors,
		locator:     opts.Locator,
		now:         time.Now,
	}
}

// Append stores e, filling ID and Timestamp when empty, and hands a copy to
// every mirror in the background. The stored event is returned.
func (l *Logger) Append(ctx context.Context, e Event) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}
	if e.ID == "" {
		id, err := ksuid.NewRandomWithTime(e.Timestamp)
		if err != nil {
			id = ksuid.New()
		}
		e.ID = id.String()
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	if over := len(l.events) - l.maxEvents; over > 0 {
		l.events = append(l.events[:0:0], l.events[over:]...)
	}
	l.mu.Unlock()

	l.dispatch(ctx, e)
	return e
}

func (l *Logger) dispatch(ctx context.Context, e Event) {
	if len(l.mirrors) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, m := range l.mirrors {
		l.inflight.Add(1)
		go func(m Mirror) {
			defer l.inflight.Done()
			mctx, cancel := context.WithTimeout(base, mirrorTimeout)
			defer cancel()
			if err := m.Mirror(mctx, e); err != nil {
				l.log.Warn(mctx, "audit mirror failed", "mirror", m.Name(), "event_id", e.ID, "error", err)
			}
		}(m)
	}
}

type attemptEntry struct {
	seq uint64
	LoginAttempt
}

// RecordAttempt stores a login attempt without waiting on the Locator. The
// location is copied from the newest retained attempt of the same IP, or
// filled in later by a background lookup. Locked-out attempts never trigger
// a lookup.
func (l *Logger) RecordAttempt(ctx context.Context, a LoginAttempt) {
	if a.Timestamp.IsZero() {
		a.Timestamp = l.now().UTC()
	}

	l.mu.Lock()
	if a.Location == "" {
		a.Location = l.knownLocationLocked(a.IP)
	}
	l.seq++
	seq := l.seq
	l.attempts = append(l.attempts, attemptEntry{seq: seq, LoginAttempt: a})
	if over := len(l.attempts) - l.maxAttempts; over > 0 {
		l.attempts = append(l.attempts[:0:0], l.attempts[over:]...)
	}
	l.mu.Unlock()

	if a.Location != "" || l.locator == nil || a.FailureReason == ReasonLockedOut {
		return
	}

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), locateTimeout)
		defer cancel()
		if loc := l.locator.Locate(lctx, a.IP); loc != "" {
			l.setLocation(seq, loc)
		}
	}()
}

func (l *Logger) knownLocationLocked(ip string) string {
	for i := len(l.attempts) - 1; i >= 0; i-- {
		if l.attempts[i].IP == ip && l.attempts[i].Location != "" {
			return l.attempts[i].Location
		}
	}
	return ""
}

func (l *Logger) setLocation(seq uint64, loc string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.attempts) - 1; i >= 0; i-- {
		if l.attempts[i].seq == seq {
			l.attempts[i].Location = loc
			return
		}
		if l.attempts[i].seq < seq {
			return
		}
	}
}

// Events returns up to limit events, newest first. limit <= 0 returns all.
func (l *Logger) Events(limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return newestFirst(l.events, limit)
}

// Attempts returns up to limit login attempts, newest first.
func (l *Logger) Attempts(limit int) []LoginAttempt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := newestFirst(l.attempts, limit)
	out := make([]LoginAttempt, len(entries))
	for i, e := range entries {
		out[i] = e.LoginAttempt
	}
	return out
}

func newestFirst[T any](src []T, limit int) []T {
	n := len(src)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(src) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, src[i])
	}
	return out
}

// Stats summarises the retained attempts.
func (l *Logger) Stats() SecurityStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := SecurityStats{
		TotalLogins:    len(l.attempts),
		BlockedIPs:     []string{},
		EventsRetained: len(l.events),
	}

	failedByIP := make(map[string]int)
	for _, a := range l.attempts {
		if a.Success {
			st.SuccessfulLogins++
			if st.LastSuccessfulLogin == nil || !a.Timestamp.Before(st.LastSuccessfulLogin.Time) {
				st.LastSuccessfulLogin = &LastLogin{Time: a.Timestamp, IP: a.IP}
			}
			continue
		}
		st.FailedLogins++
		failedByIP[a.IP]++
	}

	for ip, n := range failedByIP {
		if n >= BlockedIPThreshold {
			st.BlockedIPs = append(st.BlockedIPs, ip)
		}
	}
	sort.Strings(st.BlockedIPs)

	return st
}

// Wait blocks until in-flight mirror deliveries and location lookups finish
// or ctx is done.
func (l *Logger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
