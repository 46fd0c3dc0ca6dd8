package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/naveenspark/busline/pkg/domain"
)

// ErrNoSession is returned by Manager.Load when no session is stored.
var ErrNoSession = errors.New("no session")

// ErrMalformedSession is returned by Manager.Load when the stored record
// cannot be decoded.
var ErrMalformedSession = errors.New("malformed session")

// Manager reads and writes the session and the pending notice.
type Manager struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Load returns the stored session without judging its validity.
func (m *Manager) Load(ctx context.Context) (domain.Session, error) {
	raw, err := m.store.Get(ctx, KeySession)
	if errors.Is(err, ErrNotFound) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("session.Load: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return domain.Session{}, fmt.Errorf("session.Load: %w: %v", ErrMalformedSession, err)
	}
	return s, nil
}

// Save stores s, replacing any previous session.
func (m *Manager) Save(ctx context.Context, s domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	if err := m.store.Set(ctx, KeySession, string(raw)); err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	m.logger.Info("session saved", "role", s.Role, "expires", s.ExpiresAt())
	return nil
}

// Start creates and stores a fresh session for token and role.
func (m *Manager) Start(ctx context.Context, token, role string) (domain.Session, error) {
	s := domain.NewSession(token, role, m.now())
	if err := m.Save(ctx, s); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// Clear removes the stored session.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, KeySession); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	m.logger.Info("session cleared")
	return nil
}

// PushNotice stores n for the next login screen. At most one notice is
// pending: NoticeExpired always replaces the pending one, any other notice
// is only stored when nothing is pending.
func (m *Manager) PushNotice(ctx context.Context, n Notice) error {
	if n == NoticeNone {
		return nil
	}
	if n != NoticeExpired {
		_, err := m.store.Get(ctx, KeyNotice)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("session.PushNotice: %w", err)
		}
	}
	if err := m.store.Set(ctx, KeyNotice, string(n)); err != nil {
		return fmt.Errorf("session.PushNotice: %w", err)
	}
	return nil
}

type taker interface {
	take(ctx context.Context, key string) (string, error)
}

// TakeNotice returns the pending notice and deletes it. It returns
// NoticeNone when nothing is pending.
func (m *Manager) TakeNotice(ctx context.Context) (Notice, error) {
	var (
		raw string
		err error
	)
	if t, ok := m.store.(taker); ok {
		raw, err = t.take(ctx, KeyNotice)
	} else {
		raw, err = m.store.Get(ctx, KeyNotice)
		if err == nil {
			err = m.store.Delete(ctx, KeyNotice)
		}
	}
	if errors.Is(err, ErrNotFound) {
		return NoticeNone, nil
	}
	if err != nil {
		return NoticeNone, fmt.Errorf("session.TakeNotice: %w", err)
	}
	return Notice(raw), nil
}
