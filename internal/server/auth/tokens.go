package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	RoleAdmin = "admin"
)

// AccessClaims are carried by the short-lived bearer token.
type AccessClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	IP    string `json:"ip,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by the httpOnly refresh cookie.
type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Session is what the issuer embeds into a new access token.
type Session struct {
	Role  string
	Email string
	IP    string
}

// SessionTokens is a freshly minted set of admin tokens. RefreshToken is
// empty when only the access token was renewed.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	CSRFToken        string
}

// ExpiresIn is the access token lifetime in seconds.
func (t *SessionTokens) ExpiresIn(now time.Time) int {
	return int(t.AccessExpiresAt.Sub(now).Round(time.Second) / time.Second)
}

type TokenIssuer struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = common.AccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = common.RefreshTokenTTL
	}
	return &TokenIssuer{accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue mints access, refresh and CSRF tokens for a new login.
func (i *TokenIssuer) Issue(secret []byte, s Session) (*SessionTokens, error) {
	out, err := i.Renew(secret, s)
	if err != nil {
		return nil, err
	}

	now := i.now()
	out.RefreshExpiresAt = now.Add(i.refreshTTL)
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		Type: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   common.AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(out.RefreshExpiresAt),
		},
	})
	out.RefreshToken, err = refresh.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return out, nil
}

// Renew mints an access token and a CSRF token only.
func (i *TokenIssuer) Renew(secret []byte, s Session) (*SessionTokens, error) {
	if len(secret) == 0 {
		return nil, common.ErrNotConfigured
	}
	if s.Role == "" {
		s.Role = RoleAdmin
	}

	now := i.now()
	exp := now.Add(i.accessTTL)
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role:  s.Role,
		Email: s.Email,
		IP:    s.IP,
		Type:  TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   common.AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := access.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	csrf, err := NewCSRFToken()
	if err != nil {
		return nil, err
	}

	return &SessionTokens{AccessToken: signed, AccessExpiresAt: exp, CSRFToken: csrf}, nil
}

// NewCSRFToken returns 32 random bytes, hex encoded.
func NewCSRFToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (i *TokenIssuer) parse(token string, secret []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(common.AdminSubject),
		jwt.WithTimeFunc(i.now),
	)
	return err
}

// ParseAccess validates an access token and returns its claims.
func (i *TokenIssuer) ParseAccess(token string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(token, secret, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefresh validates a refresh token and returns its claims.
func (i *TokenIssuer) ParseRefresh(token string, secret []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(token, secret, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if claims.Type != TokenTypeRefresh {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
