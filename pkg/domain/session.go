package domain

import "time"

// SessionTTL is how long a freshly issued session stays valid on the client.
const SessionTTL = time.Hour

// Roles accepted by the auth endpoints.
const (
	RoleUser     = "user"
	RoleOperator = "operator"
)

// Roles lists the roles offered by the registration form, in display order.
var Roles = []string{RoleUser, RoleOperator}

// Session is the locally stored proof of authentication.
// Expiry is an absolute deadline in epoch milliseconds.
type Session struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Expiry int64  `json:"expiry"`
}

// NewSession creates a session for token and role that expires SessionTTL after now.
func NewSession(token, role string, now time.Time) Session {
	return Session{
		Token:  token,
		Role:   role,
		Expiry: now.Add(SessionTTL).UnixMilli(),
	}
}

// ExpiresAt returns the expiry deadline as a time.
func (s Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expiry)
}

// Expired reports whether the deadline has been reached at now.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() >= s.Expiry
}

// Valid reports whether the session carries a token and has not expired.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && !s.Expired(now)
}

// HasRole reports whether the session role is one of allowed.
func (s Session) HasRole(allowed ...string) bool {
	for _, r := range allowed {
		if r == s.Role {
			return true
		}
	}
	return false
}
