package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLogger() *audit.Logger {
	l := audit.NewLogger(logging.Nop(), audit.Options{})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		l.RecordAttempt(ctx, audit.LoginAttempt{IP: "9.9.9.9", Timestamp: time.Now(), FailureReason: audit.ReasonInvalidPassword})
	}
	l.RecordAttempt(ctx, audit.LoginAttempt{IP: "1.1.1.1", Timestamp: time.Now(), Success: true})
	return l
}

func TestScheduler_Summarize(t *testing.T) {
	l := seededLogger()
	s := NewScheduler("@every 1h", l, l, logging.Nop())

	s.summarize()

	events := l.Events(1)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventStatsSummary, events[0].Type)
	assert.Equal(t, 6, events[0].Details["totalLogins"])
	assert.Equal(t, 5, events[0].Details["failedLogins"])
	assert.Equal(t, []string{"9.9.9.9"}, events[0].Details["blockedIPs"])
}

func TestScheduler_StartStop(t *testing.T) {
	l := seededLogger()

	t.Run("disabled", func(t *testing.T) {
		s := NewScheduler("", l, l, logging.Nop())
		require.NoError(t, s.Start())
		assert.Empty(t, s.cron.Entries())
	})

	t.Run("invalid spec", func(t *testing.T) {
		s := NewScheduler("not a schedule", l, l, logging.Nop())
		assert.Error(t, s.Start())
	})

	t.Run("runs", func(t *testing.T) {
		s := NewScheduler("* * * * * *", l, l, logging.Nop())
		require.NoError(t, s.Start())
		assert.Eventually(t, func() bool {
			ev := l.Events(1)
			return len(ev) == 1 && ev[0].Type == audit.EventStatsSummary
		}, 3*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
}
