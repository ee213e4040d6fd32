// Package auth implements the admin login flow: credential check, TOTP
// second factor, token issuance and the per-IP attempt limiter.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/admin"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/dmitrijs2005/cvgenius/internal/server/limiter"
	"golang.org/x/crypto/bcrypt"
)

// AuditSink is the part of audit.Logger used by the login flow.
type AuditSink interface {
	Append(ctx context.Context, e audit.Event) audit.Event
	RecordAttempt(ctx context.Context, a audit.LoginAttempt)
}

type LoginInput struct {
	Username       string
	Password       string
	TwoFactorToken string
	IP             string
	UserAgent      string
}

type AdminUser struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// LoginResult is either a password-ok-awaiting-code answer (Require2FA) or
// an authenticated session (Tokens set).
type LoginResult struct {
	Require2FA       bool
	Tokens           *SessionTokens
	User             AdminUser
	TwoFactorEnabled bool
}

type Service struct {
	creds   admin.CredentialStore
	limiter limiter.Limiter
	totp    *TOTPVerifier
	tokens  *TokenIssuer
	audit   AuditSink
	log     logging.Logger
	now     func() time.Time
}

func NewService(creds admin.CredentialStore, lim limiter.Limiter, tokens *TokenIssuer, sink AuditSink, log logging.Logger) *Service {
	return &Service{
		creds:   creds,
		limiter: lim,
		totp:    NewTOTPVerifier(),
		tokens:  tokens,
		audit:   sink,
		log:     log.With("module", "auth"),
		now:     time.Now,
	}
}

// Login runs one pass of the login state machine. Errors are
// common.ErrNotConfigured, *LockedError, *InvalidCredentialsError,
// common.ErrInvalid2FA, or a wrapped common.ErrorInternal.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	creds, err := s.creds.Credentials()
	if err != nil {
		s.log.Error(ctx, "admin credentials not configured", "error", err)
		s.audit.Append(ctx, audit.Event{Type: audit.EventConfigError, IP: in.IP, UserAgent: in.UserAgent})
		return nil, common.ErrNotConfigured
	}

	st, err := s.limiter.Check(ctx, in.IP)
	if err != nil {
		return nil, fmt.Errorf("%w: limiter check: %v", common.ErrorInternal, err)
	}
	if st.Blocked {
		s.recordFailure(ctx, in, audit.ReasonLockedOut)
		s.audit.Append(ctx, audit.Event{
			Type: audit.EventLoginBlocked, IP: in.IP, UserAgent: in.UserAgent, Username: in.Username,
			Details: map[string]any{"retryAfter": st.RetryAfterSeconds()},
		})
		return nil, &LockedError{RetryAfter: st.RetryAfter}
	}

	if reason := checkPassword(creds, in.Username, in.Password); reason != "" {
		return nil, s.passwordFailed(ctx, in, reason)
	}

	user := AdminUser{Username: creds.Username, Email: creds.Email, Role: RoleAdmin}

	if creds.TwoFactorEnabled() {
		if in.TwoFactorToken == "" {
			s.audit.Append(ctx, audit.Event{Type: audit.EventTwoFARequired, IP: in.IP, UserAgent: in.UserAgent, Username: in.Username})
			return &LoginResult{Require2FA: true, TwoFactorEnabled: true}, nil
		}
		if !s.totp.Verify(in.TwoFactorToken, creds.TOTPSecret, s.now()) {
			s.recordFailure(ctx, in, audit.ReasonInvalid2FA)
			s.audit.Append(ctx, audit.Event{Type: audit.EventTwoFAFailure, IP: in.IP, UserAgent: in.UserAgent, Username: in.Username})
			return nil, common.ErrInvalid2FA
		}
	}

	if err := s.limiter.RecordSuccess(ctx, in.IP); err != nil {
		return nil, fmt.Errorf("%w: limiter reset: %v", common.ErrorInternal, err)
	}

	tokens, err := s.tokens.Issue(creds.JWTSecret, Session{Role: RoleAdmin, Email: creds.Email, IP: in.IP})
	if err != nil {
		return nil, fmt.Errorf("%w: issue tokens: %v", common.ErrorInternal, err)
	}

	s.audit.RecordAttempt(ctx, audit.LoginAttempt{
		IP: in.IP, Timestamp: s.now().UTC(), Success: true, Username: in.Username, UserAgent: in.UserAgent,
	})
	s.audit.Append(ctx, audit.Event{Type: audit.EventLoginSuccess, IP: in.IP, UserAgent: in.UserAgent, Username: in.Username})
	s.log.Info(ctx, "admin login", "ip", in.IP, "two_factor", creds.TwoFactorEnabled())

	return &LoginResult{Tokens: tokens, User: user, TwoFactorEnabled: creds.TwoFactorEnabled()}, nil
}

// checkPassword returns "" on match or the audit failure reason. bcrypt
// runs even for an unknown username so both paths cost the same.
func checkPassword(creds admin.Credentials, username, password string) string {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(creds.Username)) == 1
	pwErr := bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password))

	switch {
	case !userOK:
		return audit.ReasonInvalidUsername
	case pwErr != nil:
		return audit.ReasonInvalidPassword
	default:
		return ""
	}
}

func (s *Service) passwordFailed(ctx context.Context, in LoginInput, reason string) error {
	st, err := s.limiter.RecordFailure(ctx, in.IP)
	if err != nil {
		return fmt.Errorf("%w: limiter record: %v", common.ErrorInternal, err)
	}

	s.recordFailure(ctx, in, reason)
	s.audit.Append(ctx, audit.Event{
		Type: audit.EventLoginFailure, IP: in.IP, UserAgent: in.UserAgent, Username: in.Username,
		Details: map[string]any{"reason": reason, "failures": st.Failures},
	})

	if st.Blocked {
		s.log.Warn(ctx, "ip locked out", "ip", in.IP, "failures", st.Failures)
		return &LockedError{RetryAfter: st.RetryAfter}
	}
	return &InvalidCredentialsError{Remaining: st.Remaining}
}

func (s *Service) recordFailure(ctx context.Context, in LoginInput, reason string) {
	s.audit.RecordAttempt(ctx, audit.LoginAttempt{
		IP: in.IP, Timestamp: s.now().UTC(), Username: in.Username, FailureReason: reason, UserAgent: in.UserAgent,
	})
}

// Refresh validates a refresh token and mints a new access and CSRF token.
func (s *Service) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*SessionTokens, error) {
	creds, err := s.creds.Credentials()
	if err != nil {
		return nil, common.ErrNotConfigured
	}
	if _, err := s.tokens.ParseRefresh(refreshToken, creds.JWTSecret); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.Renew(creds.JWTSecret, Session{Role: RoleAdmin, Email: creds.Email, IP: ip})
	if err != nil {
		return nil, fmt.Errorf("%w: renew: %v", common.ErrorInternal, err)
	}
	s.audit.Append(ctx, audit.Event{Type: audit.EventTokenRefreshed, IP: ip, UserAgent: userAgent})
	return tokens, nil
}

// Authorize validates a bearer access token.
func (s *Service) Authorize(ctx context.Context, accessToken string) (*AccessClaims, error) {
	creds, err := s.creds.Credentials()
	if err != nil {
		return nil, common.ErrNotConfigured
	}
	claims, err := s.tokens.ParseAccess(accessToken, creds.JWTSecret)
	if err != nil {
		if !errors.Is(err, common.ErrTokenExpired) {
			s.log.Warn(ctx, "rejected access token", "error", err)
		}
		return nil, err
	}
	return claims, nil
}

// Logout only leaves a trail; tokens are stateless and expire on their own.
func (s *Service) Logout(ctx context.Context, ip, userAgent string) {
	s.audit.Append(ctx, audit.Event{Type: audit.EventLogout, IP: ip, UserAgent: userAgent})
}

// AccessTTL is the lifetime of access tokens minted by this service.
func (s *Service) AccessTTL() time.Duration { return s.tokens.accessTTL }

// RefreshTTL is the lifetime of refresh tokens minted by this service.
func (s *Service) RefreshTTL() time.Duration { return s.tokens.refreshTTL }

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }
