package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/server/limiter"
)

// LockedError is returned while the caller's IP is locked out.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %ds", e.RetryAfterSeconds())
}

func (e *LockedError) RetryAfterSeconds() int {
	return limiter.Status{RetryAfter: e.RetryAfter}.RetryAfterSeconds()
}

// InvalidCredentialsError carries how many failures remain before lockout.
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string {
	return common.ErrInvalidCredentials.Error()
}

func (e *InvalidCredentialsError) Unwrap() error {
	return common.ErrInvalidCredentials
}
