package syncmgr

import (
	"context"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
)

type Drainer interface {
	SyncNow(ctx context.Context) error
}

// DeferredSync runs registered syncs on a background goroutine. Repeated
// registrations before the worker picks one up coalesce into one drain.
type DeferredSync struct {
	tags chan string
	log  logging.Logger
}

func NewDeferredSync(log logging.Logger) *DeferredSync {
	return &DeferredSync{tags: make(chan string, 1), log: log.With("module", "deferred-sync")}
}

func (d *DeferredSync) Register(ctx context.Context, tag string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case d.tags <- tag:
	default:
	}
	return nil
}

// Run drains for every registered tag until ctx is done.
func (d *DeferredSync) Run(ctx context.Context, drainer Drainer) {
	for {
		select {
		case <-ctx.Done():
			return
		case tag := <-d.tags:
			if err := drainer.SyncNow(ctx); err != nil {
				d.log.Warn(ctx, "background sync incomplete", "tag", tag, "error", err)
			}
		}
	}
}
