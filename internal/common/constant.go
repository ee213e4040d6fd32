package common

import "time"

// Cookie and header names shared by the admin API and its callers.
const (
	RefreshTokenCookieName = "admin-refresh-token"
	CSRFTokenCookieName    = "csrf-token"
	CSRFTokenHeaderName    = "X-CSRF-Token"
	RequestIDHeaderName    = "X-Request-Id"
)

// Admin session lifetimes.
const (
	AccessTokenTTL  = 2 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
	CSRFTokenTTL    = 2 * time.Hour
)

// AdminSubject is the subject claim carried by every admin token.
const AdminSubject = "admin"

// SyncTag is the background-sync tag registered for pending CV uploads.
const SyncTag = "sync-cvs"
