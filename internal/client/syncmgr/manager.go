// Package syncmgr keeps the queue of CV ids awaiting upload and drains it
// against the CVGenius API whenever the client is online.
//
// An id stays queued until the server acknowledges the upload of the
// version that was queued. A save that lands while that id is being
// uploaded re-queues it, so the newer version goes out on the next drain.
// There is no backoff and no conflict detection: the last local write wins
// once it uploads.
package syncmgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/cvgenius/internal/client/client"
	"github.com/dmitrijs2005/cvgenius/internal/client/models"
	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
)

var ErrPending = errors.New("cvs still pending sync")

type Store interface {
	GetByID(ctx context.Context, id string) (*models.CV, error)
}

type Uploader interface {
	PushCV(ctx context.Context, cv *models.CV) (*client.SyncAck, error)
}

// Registrar defers a sync to a background worker, keyed by tag.
type Registrar interface {
	Register(ctx context.Context, tag string) error
}

// Status is what observers poll once per second.
type Status struct {
	PendingCount int  `json:"pendingCount"`
	IsSyncing    bool `json:"isSyncing"`
	Online       bool `json:"online"`
}

type Option func(*Manager)

// WithRegistrar makes AddToSyncQueue register the sync tag instead of
// draining inline.
func WithRegistrar(r Registrar) Option {
	return func(m *Manager) { m.registrar = r }
}

func WithOnline(online bool) Option {
	return func(m *Manager) { m.online.Store(online) }
}

type Manager struct {
	store     Store
	uploader  Uploader
	registrar Registrar
	log       logging.Logger

	mu    sync.Mutex
	order []string
	gens  map[string]uint64
	seq   uint64

	online  atomic.Bool
	syncing atomic.Bool
}

// NewManager returns an offline manager with an empty queue.
func NewManager(store Store, uploader Uploader, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		uploader: uploader,
		log:      log.With("module", "syncmgr"),
		gens:     make(map[string]uint64),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AddToSyncQueue queues id and requests a sync.
func (m *Manager) AddToSyncQueue(ctx context.Context, id string) {
	m.mu.Lock()
	if _, ok := m.gens[id]; !ok {
		m.order = append(m.order, id)
	}
	m.seq++
	m.gens[id] = m.seq
	m.mu.Unlock()

	if m.registrar != nil {
		err := m.registrar.Register(ctx, common.SyncTag)
		if err == nil {
			return
		}
		m.log.Warn(ctx, "background sync registration failed", "error", err)
	}

	if err := m.SyncNow(ctx); err != nil {
		m.log.Debug(ctx, "inline sync incomplete", "error", err)
	}
}

type queued struct {
	id  string
	gen uint64
}

func (m *Manager) snapshot() []queued {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]queued, len(m.order))
	for i, id := range m.order {
		out[i] = queued{id: id, gen: m.gens[id]}
	}
	return out
}

// remove drops id only if it has not been re-queued since gen.
func (m *Manager) remove(id string, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[id] != gen {
		return false
	}
	delete(m.gens, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// SyncNow uploads queued CVs one at a time in queue order. It is a no-op
// while offline or while another drain is running. The returned error wraps
// ErrPending when some ids remain queued; callers usually only log it.
func (m *Manager) SyncNow(ctx context.Context) error {
	if !m.online.Load() {
		return nil
	}
	if !m.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer m.syncing.Store(false)

	items := m.snapshot()
	pending := 0
	for i, it := range items {
		if !m.online.Load() {
			pending += len(items) - i
			break
		}

		cv, err := m.store.GetByID(ctx, it.id)
		if err != nil {
			m.log.Error(ctx, "load queued cv", "id", it.id, "error", err)
			pending++
			continue
		}
		if cv == nil {
			m.remove(it.id, it.gen)
			m.log.Debug(ctx, "queued cv no longer stored", "id", it.id)
			continue
		}

		if _, err := m.uploader.PushCV(ctx, cv); err != nil {
			m.log.Warn(ctx, "cv sync failed", "id", it.id, "error", err)
			pending++
			continue
		}

		if !m.remove(it.id, it.gen) {
			m.log.Debug(ctx, "cv changed during upload, kept queued", "id", it.id)
			pending++
			continue
		}
		m.log.Info(ctx, "cv synced", "id", it.id)
	}

	if pending > 0 {
		return fmt.Errorf("%w: %d", ErrPending, pending)
	}
	return nil
}

// SetOnline records a connectivity change. Going online runs one drain
// pass; going offline stops further uploads.
func (m *Manager) SetOnline(ctx context.Context, online bool) {
	if m.online.Swap(online) == online {
		return
	}

	if !online {
		m.log.Info(ctx, "switched to offline mode")
		return
	}

	m.log.Info(ctx, "switched to online mode", "pending", m.Status().PendingCount)
	if err := m.SyncNow(ctx); err != nil {
		m.log.Warn(ctx, "reconnect sync incomplete", "error", err)
	}
}

func (m *Manager) Online() bool {
	return m.online.Load()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	n := len(m.order)
	m.mu.Unlock()

	return Status{PendingCount: n, IsSyncing: m.syncing.Load(), Online: m.online.Load()}
}

// Pending returns the queued ids in queue order.
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
