package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/naveenspark/busline/pkg/domain"
)

// Notice is a one-shot message shown on the login screen.
type Notice string

const (
	NoticeNone         Notice = ""
	NoticeExpired      Notice = "Session expired. Please log in again."
	NoticeUnauthorized Notice = "Unauthorized access. Please log in."
)

// RouteLogin is where denied requests are redirected.
const RouteLogin = "login"

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Session  domain.Session
	Notice   Notice
	Redirect string
}

// Guard admits requests that carry a valid session with an allowed role.
type Guard struct {
	manager *Manager
	logger  *slog.Logger
}

// NewGuard returns a guard over m.
func NewGuard(m *Manager) *Guard {
	return &Guard{manager: m, logger: m.logger.With("component", "guard")}
}

// Manager returns the guard's session manager.
func (g *Guard) Manager() *Manager {
	return g.manager
}

// Check loads the session and decides whether it may proceed. Absent,
// malformed, expired or role-mismatched sessions are cleared and denied.
func (g *Guard) Check(ctx context.Context, allowedRoles ...string) Decision {
	s, err := g.manager.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSession):
		return g.deny(ctx, NoticeUnauthorized, "no session")
	case err != nil:
		return g.deny(ctx, NoticeUnauthorized, err.Error())
	case !s.Valid(g.manager.Now()):
		if s.Token == "" {
			return g.deny(ctx, NoticeUnauthorized, "empty token")
		}
		return g.deny(ctx, NoticeExpired, "expired")
	case !s.HasRole(allowedRoles...):
		return g.deny(ctx, NoticeUnauthorized, "role "+s.Role+" not allowed")
	}
	return Decision{Allowed: true, Session: s}
}

func (g *Guard) deny(ctx context.Context, n Notice, reason string) Decision {
	g.logger.Info("access denied", "reason", reason)
	if err := g.manager.Clear(ctx); err != nil {
		g.logger.Warn("clear session failed", "error", err)
	}
	return Decision{Notice: n, Redirect: RouteLogin}
}
