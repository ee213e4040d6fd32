// Package common defines shared constants and sentinel errors used across
// client and server layers of CVGenius. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrNotConfigured = errors.New("server configuration error")

	// Login flow errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalid2FA         = errors.New("invalid 2FA token")

	// Token errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// CV errors.
	ErrMissingCVID       = errors.New("cv id is required")
	ErrInvalidCVDocument = errors.New("invalid cv document")
)
