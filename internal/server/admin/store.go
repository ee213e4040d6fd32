// Package admin exposes the single admin account's credentials, which live
// in the process environment rather than a database.
package admin

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/dmitrijs2005/cvgenius/internal/common"
)

const (
	EnvUsername   = "ADMIN_USERNAME"
	EnvPwdHashB64 = "ADMIN_PWD_HASH_B64"
	EnvJWTSecret  = "JWT_SECRET"
	EnvTOTPSecret = "ADMIN_TOTP_SECRET"
	EnvEmail      = "ADMIN_EMAIL"
)

// Credentials is a snapshot of the configured admin account.
type Credentials struct {
	Username     string
	PasswordHash []byte
	JWTSecret    []byte
	TOTPSecret   string
	Email        string
}

// TwoFactorEnabled reports whether a TOTP secret is configured.
func (c Credentials) TwoFactorEnabled() bool {
	return c.TOTPSecret != ""
}

// CredentialStore returns the admin credentials or common.ErrNotConfigured.
type CredentialStore interface {
	Credentials() (Credentials, error)
}

// EnvStore reads the credentials from the environment on every call so an
// operator can fix a missing secret without restarting.
type EnvStore struct {
	lookup func(string) (string, bool)
}

func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// NewLookupStore is EnvStore with a custom variable source.
func NewLookupStore(lookup func(string) (string, bool)) *EnvStore {
	return &EnvStore{lookup: lookup}
}

func (s *EnvStore) get(key string) string {
	v, ok := s.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func (s *EnvStore) Credentials() (Credentials, error) {
	username := s.get(EnvUsername)
	hashB64 := s.get(EnvPwdHashB64)
	secret := s.get(EnvJWTSecret)

	if username == "" || hashB64 == "" || secret == "" {
		return Credentials{}, common.ErrNotConfigured
	}

	hash, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil || len(hash) == 0 {
		return Credentials{}, common.ErrNotConfigured
	}

	return Credentials{
		Username:     username,
		PasswordHash: hash,
		JWTSecret:    []byte(secret),
		TOTPSecret:   s.get(EnvTOTPSecret),
		Email:        s.get(EnvEmail),
	}, nil
}

// StaticStore serves fixed credentials.
type StaticStore struct {
	Creds Credentials
	Err   error
}

func (s StaticStore) Credentials() (Credentials, error) {
	if s.Err != nil {
		return Credentials{}, s.Err
	}
	return s.Creds, nil
}
