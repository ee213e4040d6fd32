// Package httpapi is the HTTP surface of the server: admin authentication,
// security statistics and the CV sync endpoint, served by gin.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/dmitrijs2005/cvgenius/internal/server/auth"
	"github.com/dmitrijs2005/cvgenius/internal/server/cvs"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*auth.SessionTokens, error)
	Authorize(ctx context.Context, accessToken string) (*auth.AccessClaims, error)
	Logout(ctx context.Context, ip, userAgent string)
}

type AuditView interface {
	Stats() audit.SecurityStats
	Events(limit int) []audit.Event
	Attempts(limit int) []audit.LoginAttempt
}

type CVSyncer interface {
	Sync(ctx context.Context, doc json.RawMessage) (*cvs.SyncResult, error)
}

// Options carries the HTTP-level settings of the handlers.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	RecentLimit    int
	MaxBodyBytes   int64
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the socket address is the client IP.
	TrustedProxies []string
}

type Handlers struct {
	auth  AuthService
	audit AuditView
	cvs   CVSyncer
	log   logging.Logger
	opts  Options
}

func NewHandlers(authSvc AuthService, auditView AuditView, cvSvc CVSyncer, log logging.Logger, opts Options) *Handlers {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 50
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handlers{auth: authSvc, audit: auditView, cvs: cvSvc, log: log.With("module", "httpapi"), opts: opts}
}

// Register mounts every route under /api.
func (h *Handlers) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authGroup := router.Group("/admin/auth")
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/logout", h.Logout)

	security := router.Group("/admin/security")
	security.Use(RequireAdmin(h.auth))
	security.GET("/stats", h.SecurityStats)

	router.POST("/cv/sync", h.SyncCV)
}

// NewEngine builds the gin engine with the standard middleware chain.
func NewEngine(h *Handlers, log logging.Logger) (*gin.Engine, error) {
	engine := gin.New()

	var proxies []string
	if len(h.opts.TrustedProxies) > 0 {
		proxies = h.opts.TrustedProxies
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(
		RequestID(),
		Logger(log.With("module", "http")),
		Recovery(log),
		CORS(h.opts.AllowedOrigins),
	)
	h.Register(engine.Group("/api"))
	return engine, nil
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
