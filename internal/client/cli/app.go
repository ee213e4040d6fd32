package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/client"
	"github.com/dmitrijs2005/cvgenius/internal/client/config"
	"github.com/dmitrijs2005/cvgenius/internal/client/repositories/cvs"
	"github.com/dmitrijs2005/cvgenius/internal/client/services"
	"github.com/dmitrijs2005/cvgenius/internal/client/syncmgr"
	"github.com/dmitrijs2005/cvgenius/internal/filex"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
)

type syncController interface {
	SetOnline(ctx context.Context, online bool)
	SyncNow(ctx context.Context) error
	Status() syncmgr.Status
	Pending() []string
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config    *config.Config
	cvService services.CVService
	sync      syncController
	api       pinger
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer

	db       *sql.DB
	manager  *syncmgr.Manager
	deferred *syncmgr.DeferredSync
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	repo := cvs.NewSQLiteRepository(db)
	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	deferred := syncmgr.NewDeferredSync(log)
	manager := syncmgr.NewManager(repo, api, log, syncmgr.WithRegistrar(deferred))

	return &App{
		config:    c,
		cvService: services.NewCVService(repo, manager),
		sync:      manager,
		api:       api,
		log:       log.With("module", "cli"),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		db:        db,
		manager:   manager,
		deferred:  deferred,
	}, nil
}

// Run starts the background workers and the REPL, and tears everything
// down when the REPL exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.deferred.Run(ctx, a.manager)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	observer := NewStatusObserver(a.sync, a.log)
	if err := observer.Start(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Welcome to CVGenius offline client (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	cancel()
	stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	observer.Stop(stopCtx)
	wg.Wait()

	return a.db.Close()
}

func (a *App) getStatus() string {
	st := a.sync.Status()
	mode := "offline"
	if st.Online {
		mode = "online"
	}
	if st.PendingCount > 0 {
		return fmt.Sprintf("(%s, %d pending)", mode, st.PendingCount)
	}
	return fmt.Sprintf("(%s)", mode)
}

// StartOnlineStatusWatcher probes the API immediately and then every
// interval, feeding the result to the sync manager.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	err := a.api.Ping(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	a.sync.SetOnline(ctx, err == nil)
}
