package limiter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestMemory(c *clock) *MemoryLimiter {
	m := NewMemoryLimiter(Options{})
	m.now = c.now
	return m
}

func TestMemoryLimiter_LocksAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	m := newTestMemory(c)

	for i := 1; i <= 4; i++ {
		st, err := m.RecordFailure(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, st.Blocked, "failure %d must not lock", i)
		assert.Equal(t, 5-i, st.Remaining)
	}

	st, err := m.RecordFailure(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, st.Blocked)
	assert.Equal(t, 0, st.Remaining)
	assert.Equal(t, 900, st.RetryAfterSeconds())

	c.advance(10 * time.Second)
	st, err = m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, st.Blocked)
	assert.Equal(t, 890, st.RetryAfterSeconds())

	other, err := m.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.False(t, other.Blocked)
	assert.Equal(t, 5, other.Remaining)
}

func TestMemoryLimiter_SuccessClears(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(newClock())

	for i := 0; i < 5; i++ {
		_, _ = m.RecordFailure(ctx, "1.2.3.4")
	}
	require.NoError(t, m.RecordSuccess(ctx, "1.2.3.4"))

	st, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, Status{Remaining: 5}, st)
}

func TestMemoryLimiter_ExpiryAndRearm(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	m := newTestMemory(c)

	for i := 0; i < 5; i++ {
		_, _ = m.RecordFailure(ctx, "1.2.3.4")
	}
	c.advance(15*time.Minute + time.Second)

	st, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, st.Blocked)
	assert.Equal(t, 5, st.Failures)

	st, err = m.RecordFailure(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, st.Blocked, "a failure past the threshold re-arms the lockout")
	assert.Equal(t, 15*time.Minute, st.RetryAfter)
}

func TestMemoryLimiter_ForgetsIdleRecords(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	m := newTestMemory(c)

	for i := 0; i < 5; i++ {
		_, _ = m.RecordFailure(ctx, "1.2.3.4")
	}
	_, _ = m.RecordFailure(ctx, "5.6.7.8")
	require.Equal(t, 2, m.Len())

	c.advance(DefaultRetention)

	st, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, Status{Remaining: 5}, st, "idle lockout is forgotten")

	st, err = m.RecordFailure(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, st.Blocked, "counting restarts after retention")
	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, 1, m.Len(), "the other idle record is swept")
}

func TestMemoryLimiter_SweepBoundsRecords(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	m := newTestMemory(c)

	for i := 0; i < 1000; i++ {
		_, _ = m.RecordFailure(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, 1000, m.Len())

	c.advance(DefaultRetention + time.Minute)
	_, _ = m.RecordFailure(ctx, "192.0.2.1")
	assert.Equal(t, 1, m.Len())
}

func TestMemoryLimiter_RetentionNotShorterThanLockout(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	m := NewMemoryLimiter(Options{MaxFailures: 1, Lockout: time.Hour, Retention: time.Minute})
	m.now = c.now

	_, _ = m.RecordFailure(ctx, "ip")
	c.advance(30 * time.Minute)

	st, err := m.Check(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, st.Blocked)
}

func TestMemoryLimiter_CustomOptions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLimiter(Options{MaxFailures: 2, Lockout: time.Minute})

	_, _ = m.RecordFailure(ctx, "ip")
	st, _ := m.RecordFailure(ctx, "ip")
	assert.True(t, st.Blocked)
	assert.LessOrEqual(t, st.RetryAfter, time.Minute)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLimiter(Options{MaxFailures: 1000})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.RecordFailure(ctx, "ip")
		}()
	}
	wg.Wait()

	st, _ := m.Check(ctx, "ip")
	assert.Equal(t, 50, st.Failures)
}

func TestStatus_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, Status{}.RetryAfterSeconds())
	assert.Equal(t, 1, Status{RetryAfter: time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 2, Status{RetryAfter: 2 * time.Second}.RetryAfterSeconds())
	assert.Equal(t, 3, Status{RetryAfter: 2*time.Second + 1}.RetryAfterSeconds())
}
