// Package server wires the CVGenius API: configuration, the admin login
// pipeline, the audit trail, CV storage and the HTTP server, and runs them
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/admin"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/dmitrijs2005/cvgenius/internal/server/auth"
	"github.com/dmitrijs2005/cvgenius/internal/server/config"
	"github.com/dmitrijs2005/cvgenius/internal/server/cvs"
	"github.com/dmitrijs2005/cvgenius/internal/server/httpapi"
	"github.com/dmitrijs2005/cvgenius/internal/server/jobs"
	"github.com/dmitrijs2005/cvgenius/internal/server/limiter"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	audit     *audit.Logger
	http      *httpapi.HTTPServer
	scheduler *jobs.Scheduler

	db    *sql.DB
	redis *redis.Client
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	app := &App{config: cfg, logger: logger}

	lim, err := app.initLimiter(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	auditLog := audit.NewLogger(logger, audit.Options{
		Locator: audit.NewHTTPLocator(cfg.LocatorURL, cfg.LocatorTimeout),
		Mirrors: app.initMirrors(ctx),
	})
	app.audit = auditLog

	repo, err := app.initCVRepository(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	authSvc := auth.NewService(
		admin.NewEnvStore(),
		lim,
		auth.NewTokenIssuer(cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		auditLog,
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	handlers := httpapi.NewHandlers(authSvc, auditLog, cvs.NewService(repo, logger), logger, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.SecureCookies,
		TrustedProxies: cfg.TrustedProxies,
	})
	engine, err := httpapi.NewEngine(handlers, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.http = httpapi.NewHTTPServer(cfg.HTTPAddr, engine, logger)
	app.scheduler = jobs.NewScheduler(cfg.StatsSchedule, auditLog, auditLog, logger)

	return app, nil
}

func (app *App) initLimiter(ctx context.Context) (limiter.Limiter, error) {
	opts := limiter.Options{MaxFailures: app.config.LoginMaxFailures, Lockout: app.config.LockoutDuration}
	if app.config.Limiter != config.LimiterRedis {
		return limiter.NewMemoryLimiter(opts), nil
	}

	client, err := limiter.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.redis = client
	app.logger.Info(ctx, "login limiter backed by redis", "addr", app.config.RedisAddr)
	return limiter.NewRedisLimiter(client, opts), nil
}

// initMirrors never fails startup: a mirror that cannot be built is logged
// and skipped, the in-memory trail stays authoritative.
func (app *App) initMirrors(ctx context.Context) []audit.Mirror {
	cfg := app.config
	var mirrors []audit.Mirror

	if cfg.AuditMirrorEnabled() {
		mirrors = append(mirrors, audit.NewConfigAPIMirror(cfg.ConfigAPIURL, cfg.VercelToken, cfg.VercelProjectID, cfg.AuditEncryptionKey))
	}

	if cfg.AuditS3Bucket != "" && cfg.AuditEncryptionKey != "" {
		client, err := audit.NewS3Client(ctx, audit.S3Options{
			Region:    cfg.AuditS3Region,
			Endpoint:  cfg.AuditS3Endpoint,
			AccessKey: cfg.AuditS3AccessKey,
			SecretKey: cfg.AuditS3SecretKey,
		})
		if err != nil {
			app.logger.Warn(ctx, "s3 audit mirror disabled", "error", err)
		} else {
			mirrors = append(mirrors, audit.NewS3Mirror(client, cfg.AuditS3Bucket, cfg.AuditEncryptionKey))
		}
	}

	for _, m := range mirrors {
		app.logger.Info(ctx, "audit mirror enabled", "mirror", m.Name())
	}
	return mirrors
}

func (app *App) initCVRepository(ctx context.Context) (cvs.Repository, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, CVs are kept in memory")
		return cvs.NewMemoryRepository(), nil
	}

	db, err := cvs.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	if err := cvs.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return cvs.NewPostgresRepository(db), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Start(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then shuts down
// within the configured grace period.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownGrace)
	defer cancel()

	if err := app.http.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	wg.Wait()

	app.scheduler.Stop(shutdownCtx)
	if err := app.audit.Wait(shutdownCtx); err != nil {
		app.logger.Warn(shutdownCtx, "audit mirrors still in flight", "error", err)
	}
	app.close()

	app.logger.Info(shutdownCtx, "stopped")
	return nil
}

func (app *App) close() {
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
}
