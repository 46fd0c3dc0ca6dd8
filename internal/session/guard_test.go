package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/naveenspark/busline/pkg/domain"
)

func TestGuardCheck(t *testing.T) {
	tests := []struct {
		name       string
		stored     string // raw record; "" means nothing stored
		roles      []string
		wantAllow  bool
		wantNotice Notice
	}{
		{
			name:      "valid user",
			stored:    `{"token":"t","role":"user","expiry":` + ms(testNow.Add(time.Minute)) + `}`,
			roles:     []string{domain.RoleUser},
			wantAllow: true,
		},
		{
			name:       "no session",
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeUnauthorized,
		},
		{
			name:       "malformed",
			stored:     `{"token":`,
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeUnauthorized,
		},
		{
			name:       "expiry equals now",
			stored:     `{"token":"t","role":"user","expiry":` + ms(testNow) + `}`,
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeExpired,
		},
		{
			name:       "expired",
			stored:     `{"token":"t","role":"user","expiry":` + ms(testNow.Add(-time.Hour)) + `}`,
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeExpired,
		},
		{
			name:       "role mismatch",
			stored:     `{"token":"t","role":"operator","expiry":` + ms(testNow.Add(time.Hour)) + `}`,
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeUnauthorized,
		},
		{
			name:       "empty token",
			stored:     `{"token":"","role":"user","expiry":` + ms(testNow.Add(time.Hour)) + `}`,
			roles:      []string{domain.RoleUser},
			wantNotice: NoticeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			if tt.stored != "" {
				store.Set(ctx, KeySession, tt.stored) //nolint:errcheck
			}
			g := NewGuard(newTestManager(store))

			d := g.Check(ctx, tt.roles...)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("Allowed = %v, want %v", d.Allowed, tt.wantAllow)
			}
			if d.Notice != tt.wantNotice {
				t.Errorf("Notice = %q, want %q", d.Notice, tt.wantNotice)
			}
			if tt.wantAllow {
				if d.Redirect != "" {
					t.Errorf("Redirect = %q, want empty", d.Redirect)
				}
				return
			}
			if d.Redirect != RouteLogin {
				t.Errorf("Redirect = %q, want %q", d.Redirect, RouteLogin)
			}
			if _, err := store.Get(ctx, KeySession); !errors.Is(err, ErrNotFound) {
				t.Errorf("session not cleared after denial: %v", err)
			}
		})
	}
}

func ms(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
