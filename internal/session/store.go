// Package session persists the authenticated session and guards protected
// views and commands against missing, malformed or expired sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Well-known store keys.
const (
	KeySession = "AuthToken"
	KeyNotice  = "toastMessage"
)

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Store is a small string key/value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open opens the named backend rooted at dir.
func Open(ctx context.Context, backend, dir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(filepath.Join(dir, "session.json"))
	case BackendSQLite:
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("session.Open: %w", err)
		}
		s, err := NewSQLiteStore(filepath.Join(dir, "busline.db"), logger)
		if err != nil {
			return nil, fmt.Errorf("session.Open: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, fmt.Errorf("session.Open: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("session.Open: unknown backend %q", backend)
	}
}
