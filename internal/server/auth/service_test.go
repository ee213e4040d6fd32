package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/dmitrijs2005/cvgenius/internal/server/admin"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/dmitrijs2005/cvgenius/internal/server/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testUser = "admin"
	testPass = "correct horse"
	testIP   = "1.2.3.4"
)

func testCreds(t *testing.T, totpSecret string) admin.Credentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPass), bcrypt.MinCost)
	require.NoError(t, err)
	return admin.Credentials{
		Username:     testUser,
		PasswordHash: hash,
		JWTSecret:    testSecret,
		TOTPSecret:   totpSecret,
		Email:        "admin@cvgenius.ie",
	}
}

// countingLimiter records which limiter methods the flow touched.
type countingLimiter struct {
	limiter.Limiter
	checks, failures, successes int
	err                         error
}

func (c *countingLimiter) Check(ctx context.Context, ip string) (limiter.Status, error) {
	c.checks++
	if c.err != nil {
		return limiter.Status{}, c.err
	}
	return c.Limiter.Check(ctx, ip)
}

func (c *countingLimiter) RecordFailure(ctx context.Context, ip string) (limiter.Status, error) {
	c.failures++
	return c.Limiter.RecordFailure(ctx, ip)
}

func (c *countingLimiter) RecordSuccess(ctx context.Context, ip string) error {
	c.successes++
	return c.Limiter.RecordSuccess(ctx, ip)
}

type fixture struct {
	svc   *Service
	lim   *countingLimiter
	audit *audit.Logger
	now   time.Time
}

func newFixture(t *testing.T, store admin.CredentialStore) *fixture {
	t.Helper()
	now := time.Unix(1_700_000_010, 0).UTC()
	lim := &countingLimiter{Limiter: limiter.NewMemoryLimiter(limiter.Options{})}
	al := audit.NewLogger(logging.Nop(), audit.Options{})
	svc := NewService(store, lim, newTestIssuer(now), al, logging.Nop())
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, lim: lim, audit: al, now: now}
}

func login(f *fixture, user, pass, code string) (*LoginResult, error) {
	return f.svc.Login(context.Background(), LoginInput{
		Username: user, Password: pass, TwoFactorToken: code, IP: testIP, UserAgent: "test-agent",
	})
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})

	res, err := login(f, testUser, testPass, "")
	require.NoError(t, err)
	require.NotNil(t, res.Tokens)
	assert.False(t, res.Require2FA)
	assert.False(t, res.TwoFactorEnabled)
	assert.Equal(t, AdminUser{Username: testUser, Email: "admin@cvgenius.ie", Role: RoleAdmin}, res.User)
	assert.Equal(t, 1, f.lim.successes)

	attempts := f.audit.Attempts(0)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, "test-agent", attempts[0].UserAgent)
	assert.Equal(t, audit.EventLoginSuccess, f.audit.Events(1)[0].Type)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})

	_, err := login(f, testUser, "wrong", "")
	var ice *InvalidCredentialsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 4, ice.Remaining)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = login(f, "root", testPass, "")
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 3, ice.Remaining)

	attempts := f.audit.Attempts(0)
	require.Len(t, attempts, 2)
	assert.Equal(t, audit.ReasonInvalidUsername, attempts[0].FailureReason)
	assert.Equal(t, audit.ReasonInvalidPassword, attempts[1].FailureReason)
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})

	for i := 0; i < 4; i++ {
		_, err := login(f, testUser, "wrong", "")
		var ice *InvalidCredentialsError
		require.ErrorAs(t, err, &ice)
	}

	_, err := login(f, testUser, "wrong", "")
	var locked *LockedError
	require.ErrorAs(t, err, &locked, "the fifth failure locks the IP")

	_, err = login(f, testUser, testPass, "")
	require.ErrorAs(t, err, &locked, "correct password is still rejected during lockout")
	assert.InDelta(t, 900, locked.RetryAfterSeconds(), 1)
	assert.Equal(t, 0, f.lim.successes)
	assert.Equal(t, audit.EventLoginBlocked, f.audit.Events(1)[0].Type)
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})

	for i := 0; i < 4; i++ {
		_, _ = login(f, testUser, "wrong", "")
	}
	_, err := login(f, testUser, testPass, "")
	require.NoError(t, err)

	st, err := f.lim.Check(context.Background(), testIP)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Failures)
	assert.Equal(t, 5, st.Remaining)
}

func TestLogin_Require2FA(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, testTOTPSecret)})

	res, err := login(f, testUser, testPass, "")
	require.NoError(t, err)
	assert.True(t, res.Require2FA)
	assert.Nil(t, res.Tokens)
	assert.Equal(t, 0, f.lim.successes)
	assert.Equal(t, 0, f.lim.failures)
}

func TestLogin_Valid2FA(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, testTOTPSecret)})

	res, err := login(f, testUser, testPass, codeAt(t, f.now.Add(-60*time.Second)))
	require.NoError(t, err)
	require.NotNil(t, res.Tokens)
	assert.True(t, res.TwoFactorEnabled)
}

func TestLogin_Invalid2FA(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, testTOTPSecret)})

	_, err := login(f, testUser, testPass, codeAt(t, f.now.Add(-90*time.Second)))
	assert.ErrorIs(t, err, common.ErrInvalid2FA)
	assert.Equal(t, 0, f.lim.failures, "2FA failures do not feed the limiter")
	assert.Equal(t, 0, f.lim.successes)
	assert.Equal(t, audit.ReasonInvalid2FA, f.audit.Attempts(1)[0].FailureReason)
}

func TestLogin_NotConfigured(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Err: common.ErrNotConfigured})

	_, err := login(f, testUser, testPass, "")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
	assert.Equal(t, 0, f.lim.checks+f.lim.failures+f.lim.successes, "limiter untouched")
	assert.Equal(t, audit.EventConfigError, f.audit.Events(1)[0].Type)
}

func TestLogin_LimiterUnavailable(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})
	f.lim.err = errors.New("redis down")

	_, err := login(f, testUser, testPass, "")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshAndAuthorize(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})
	ctx := context.Background()

	res, err := login(f, testUser, testPass, "")
	require.NoError(t, err)

	renewed, err := f.svc.Refresh(ctx, res.Tokens.RefreshToken, "5.6.7.8", "ua")
	require.NoError(t, err)
	assert.Empty(t, renewed.RefreshToken)
	assert.NotEqual(t, res.Tokens.CSRFToken, renewed.CSRFToken)

	claims, err := f.svc.Authorize(ctx, renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8", claims.IP)

	_, err = f.svc.Refresh(ctx, res.Tokens.AccessToken, "5.6.7.8", "ua")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = f.svc.Authorize(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, admin.StaticStore{Creds: testCreds(t, "")})
	f.svc.Logout(context.Background(), testIP, "ua")
	assert.Equal(t, audit.EventLogout, f.audit.Events(1)[0].Type)
}
