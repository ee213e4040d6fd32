package cli

import (
	"context"

	"github.com/dmitrijs2005/cvgenius/internal/client/syncmgr"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/robfig/cron/v3"
)

type statusSource interface {
	Status() syncmgr.Status
}

// StatusObserver polls the sync manager once per second and logs the
// queue state while the client is online with uploads pending.
type StatusObserver struct {
	cron   *cron.Cron
	source statusSource
	log    logging.Logger
}

func NewStatusObserver(source statusSource, log logging.Logger) *StatusObserver {
	return &StatusObserver{cron: cron.New(), source: source, log: log}
}

func (o *StatusObserver) Start() error {
	if _, err := o.cron.AddFunc("@every 1s", o.report); err != nil {
		return err
	}
	o.cron.Start()
	return nil
}

func (o *StatusObserver) Stop(ctx context.Context) {
	done := o.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (o *StatusObserver) report() {
	st := o.source.Status()
	if !st.Online || st.PendingCount == 0 {
		return
	}
	o.log.Info(context.Background(), "sync status", "pendingCount", st.PendingCount, "isSyncing", st.IsSyncing)
}
