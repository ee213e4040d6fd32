// Package jobs runs periodic background work for the server.
package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/robfig/cron/v3"
)

type StatsSource interface {
	Stats() audit.SecurityStats
}

type EventSink interface {
	Append(ctx context.Context, e audit.Event) audit.Event
}

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	stats    StatsSource
	sink     EventSink
	log      logging.Logger
}

// NewScheduler takes a six-field cron spec (seconds first). An empty
// schedule disables the job.
func NewScheduler(schedule string, stats StatsSource, sink EventSink, log logging.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		stats:    stats,
		sink:     sink,
		log:      log.With("module", "jobs"),
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.summarize); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info(context.Background(), "scheduler started", "schedule", s.schedule)
	return nil
}

// Stop waits for a running job, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) summarize() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st := s.stats.Stats()
	s.sink.Append(ctx, audit.Event{
		Type: audit.EventStatsSummary,
		Details: map[string]any{
			"totalLogins":      st.TotalLogins,
			"successfulLogins": st.SuccessfulLogins,
			"failedLogins":     st.FailedLogins,
			"blockedIPs":       st.BlockedIPs,
		},
	})
	if len(st.BlockedIPs) > 0 {
		s.log.Warn(ctx, "ips over failure threshold", "ips", st.BlockedIPs)
	}
}
