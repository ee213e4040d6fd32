package audit

import "time"

type EventType string

const (
	EventLoginSuccess   EventType = "login_success"
	EventLoginFailure   EventType = "login_failure"
	EventLoginBlocked   EventType = "login_blocked"
	EventTwoFARequired  EventType = "login_2fa_required"
	EventTwoFAFailure   EventType = "login_2fa_failure"
	EventConfigError    EventType = "config_error"
	EventTokenRefreshed EventType = "token_refresh"
	EventLogout         EventType = "logout"
	EventStatsSummary   EventType = "security_summary"
)

// Failure reasons recorded on LoginAttempt. They stay in the audit trail
// and are never returned to HTTP clients.
const (
	ReasonInvalidUsername = "invalid_username"
	ReasonInvalidPassword = "invalid_password"
	ReasonInvalid2FA      = "invalid_2fa"
	ReasonLockedOut       = "locked_out"
)

// Event is one entry of the security event trail.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Username  string         `json:"username,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// LoginAttempt is appended for every credential check on the login route.
type LoginAttempt struct {
	IP            string    `json:"ip"`
	Timestamp     time.Time `json:"timestamp"`
	Success       bool      `json:"success"`
	Username      string    `json:"username"`
	FailureReason string    `json:"failureReason,omitempty"`
	UserAgent     string    `json:"userAgent"`
	Location      string    `json:"location,omitempty"`
}

type LastLogin struct {
	Time time.Time `json:"time"`
	IP   string    `json:"ip"`
}

// SecurityStats is derived from the retained attempts. BlockedIPs is a
// heuristic over that window and may disagree with the live limiter.
type SecurityStats struct {
	TotalLogins         int        `json:"totalLogins"`
	SuccessfulLogins    int        `json:"successfulLogins"`
	FailedLogins        int        `json:"failedLogins"`
	LastSuccessfulLogin *LastLogin `json:"lastSuccessfulLogin"`
	BlockedIPs          []string   `json:"blockedIPs"`
	EventsRetained      int        `json:"eventsRetained"`
}
