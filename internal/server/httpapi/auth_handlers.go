package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/common"
	"github.com/dmitrijs2005/cvgenius/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	msgConfigError        = "Server configuration error"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalid2FA         = "Invalid 2FA token"
	msgLocked             = "Too many failed attempts. Please try again later."
	msgInternal           = "Internal server error"

	refreshCookiePath = "/api/admin/auth"
)

type loginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	TwoFactorToken string `json:"twoFactorToken"`
}

type loginResponse struct {
	Success          bool            `json:"success"`
	Token            string          `json:"token"`
	CSRFToken        string          `json:"csrfToken"`
	ExpiresIn        int             `json:"expiresIn"`
	User             *auth.AdminUser `json:"user,omitempty"`
	TwoFactorEnabled bool            `json:"twoFactorEnabled"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), auth.LoginInput{
		Username:       req.Username,
		Password:       req.Password,
		TwoFactorToken: req.TwoFactorToken,
		IP:             c.ClientIP(),
		UserAgent:      c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.loginError(c, err)
		return
	}

	if res.Require2FA {
		c.JSON(http.StatusOK, gin.H{"success": false, "require2FA": true})
		return
	}

	h.setSessionCookies(c, res.Tokens)
	user := res.User
	c.JSON(http.StatusOK, loginResponse{
		Success:          true,
		Token:            res.Tokens.AccessToken,
		CSRFToken:        res.Tokens.CSRFToken,
		ExpiresIn:        res.Tokens.ExpiresIn(time.Now()),
		User:             &user,
		TwoFactorEnabled: res.TwoFactorEnabled,
	})
}

func (h *Handlers) loginError(c *gin.Context, err error) {
	var locked *auth.LockedError
	var invalid *auth.InvalidCredentialsError

	switch {
	case errors.Is(err, common.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgConfigError})
	case errors.As(err, &locked):
		secs := locked.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgLocked, "lockoutRemaining": secs})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials, "attemptsRemaining": invalid.Remaining})
	case errors.Is(err, common.ErrInvalid2FA):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalid2FA})
	default:
		h.log.Error(c.Request.Context(), "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func (h *Handlers) Refresh(c *gin.Context) {
	token, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing refresh token"})
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), token, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgConfigError})
		case errors.Is(err, common.ErrRefreshTokenExpired):
			h.clearSessionCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		case errors.Is(err, common.ErrInvalidToken):
			h.clearSessionCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		default:
			h.log.Error(c.Request.Context(), "refresh failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}
		return
	}

	h.setSessionCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     tokens.AccessToken,
		"csrfToken": tokens.CSRFToken,
		"expiresIn": tokens.ExpiresIn(time.Now()),
	})
}

func (h *Handlers) Logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"))
	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) SecurityStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":          h.audit.Stats(),
		"recentEvents":   h.audit.Events(h.opts.RecentLimit),
		"recentAttempts": h.audit.Attempts(h.opts.RecentLimit),
	})
}

// setSessionCookies writes the CSRF cookie and, when present, the refresh
// cookie. The CSRF cookie stays readable by scripts for double submit.
func (h *Handlers) setSessionCookies(c *gin.Context, t *auth.SessionTokens) {
	c.SetSameSite(http.SameSiteStrictMode)
	if t.RefreshToken != "" {
		c.SetCookie(common.RefreshTokenCookieName, t.RefreshToken,
			int(common.RefreshTokenTTL/time.Second), refreshCookiePath, "", h.opts.SecureCookies, true)
	}
	c.SetCookie(common.CSRFTokenCookieName, t.CSRFToken,
		int(common.CSRFTokenTTL/time.Second), "/", "", h.opts.SecureCookies, false)
}

func (h *Handlers) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.RefreshTokenCookieName, "", -1, refreshCookiePath, "", h.opts.SecureCookies, true)
	c.SetCookie(common.CSRFTokenCookieName, "", -1, "/", "", h.opts.SecureCookies, false)
}
