package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/internal/session"
	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestGuard() *session.Guard {
	mgr := session.NewManager(session.NewMemoryStore(), session.WithClock(func() time.Time { return testNow }))
	return session.NewGuard(mgr)
}

func newTestEnv(c *client.Client) *env {
	if c == nil {
		c = client.New("http://127.0.0.1:0/api", "")
	}
	return &env{
		client: c,
		guard:  newTestGuard(),
		logger: slog.New(slog.DiscardHandler),
		opts:   Options{PageSize: 5},
	}
}

func newTestApp(c *client.Client) App {
	a := NewApp(Options{Client: c, Guard: newTestGuard()})
	a.width = 100
	a.height = 40
	return a
}

// newTestServer serves routes keyed by "METHOD /path".
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api", "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd, flattening batches, and keeps only this package's
// messages. Timer-driven messages are dropped so loops settle.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	switch msg.(type) {
	case nil, shimmerTickMsg, toastExpiredMsg:
		return nil
	}
	if !strings.HasPrefix(fmt.Sprintf("%T", msg), "tui.") {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds msg to the app and keeps feeding the resulting messages until
// none are left. Toast timers are not started.
func pump(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatal("message loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		model, cmd := a.Update(next)
		a = model.(App)
		if _, ok := next.(toastMsg); ok {
			continue
		}
		queue = append(queue, runCmd(cmd)...)
	}
	return a
}

// drive feeds msg to a single view. Toasts and navigations are returned
// instead of being fed back.
func drive[M any](t *testing.T, m M, update func(M, tea.Msg) (M, tea.Cmd), msg tea.Msg) (M, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatal("message loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		var cmd tea.Cmd
		m, cmd = update(m, next)
		for _, produced := range runCmd(cmd) {
			switch produced.(type) {
			case toastMsg, navigateMsg:
				out = append(out, produced)
			default:
				queue = append(queue, produced)
			}
		}
	}
	return m, out
}

func findToast(msgs []tea.Msg) (toastMsg, bool) {
	for _, m := range msgs {
		if tm, ok := m.(toastMsg); ok {
			return tm, true
		}
	}
	return toastMsg{}, false
}

func findNav(msgs []tea.Msg) (navigateMsg, bool) {
	for _, m := range msgs {
		if nm, ok := m.(navigateMsg); ok {
			return nm, true
		}
	}
	return navigateMsg{}, false
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var req client.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad request"})
		return
	}
	if req.Email != "test@example.com" || req.Password != "password123" {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Welcome back",
		"data": map[string]any{
			"token": "mock-token",
			"user":  map[string]string{"role": "user", "email": req.Email},
		},
	})
}

func fillLogin(a App, email, password string) App {
	a.login.inputs[loginEmail].SetValue(email)
	a.login.inputs[loginPassword].SetValue(password)
	return a
}

func TestLoginStoresSessionAndOpensSearch(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{"POST /api/auth/login": loginHandler})
	a := fillLogin(newTestApp(c), "test@example.com", "password123")

	a = pump(t, a, keyMsg("ctrl+s"))

	if a.view != viewSearch {
		t.Fatalf("view = %d, want viewSearch", a.view)
	}
	s, err := a.env.manager().Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Role != domain.RoleUser {
		t.Errorf("Role = %q, want %q", s.Role, domain.RoleUser)
	}
	if s.Expiry <= testNow.UnixMilli() {
		t.Errorf("Expiry = %d, want after %d", s.Expiry, testNow.UnixMilli())
	}
	if got, want := s.Expiry, testNow.Add(domain.SessionTTL).UnixMilli(); got != want {
		t.Errorf("Expiry = %d, want %d", got, want)
	}
	if got := a.search.client.Token(); got != "mock-token" {
		t.Errorf("search client token = %q, want mock-token", got)
	}
	if a.toast.text != "Welcome back" {
		t.Errorf("toast = %q, want server message", a.toast.text)
	}
}

func TestLoginFailureNotices(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"unknown user", loginHandler, msgUserNotFound},
		{"no token", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
		}, msgUnexpectedError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, map[string]http.HandlerFunc{"POST /api/auth/login": tc.handler})
			a := fillLogin(newTestApp(c), "nobody@example.com", "secret")

			a = pump(t, a, keyMsg("ctrl+s"))

			if a.view != viewLogin {
				t.Errorf("view = %d, want viewLogin", a.view)
			}
			if a.toast.text != tc.want {
				t.Errorf("toast = %q, want %q", a.toast.text, tc.want)
			}
			if _, err := a.env.manager().Load(context.Background()); err == nil {
				t.Error("session stored after failed login")
			}
		})
	}
}

func TestLoginRequiresFields(t *testing.T) {
	a := newTestApp(nil)
	a = pump(t, a, keyMsg("ctrl+s"))
	if !strings.Contains(a.login.status, "Please fill in") {
		t.Errorf("status = %q, want fill-in prompt", a.login.status)
	}
}

func TestGuardRedirects(t *testing.T) {
	tests := []struct {
		name   string
		sess   domain.Session
		notice session.Notice
	}{
		{"expired", domain.Session{Token: "tok", Role: domain.RoleUser, Expiry: testNow.UnixMilli() - 1}, session.NoticeExpired},
		{"expires now", domain.Session{Token: "tok", Role: domain.RoleUser, Expiry: testNow.UnixMilli()}, session.NoticeExpired},
		{"wrong role", domain.NewSession("tok", domain.RoleOperator, testNow), session.NoticeUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(nil)
			ctx := context.Background()
			if err := a.env.manager().Save(ctx, tc.sess); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			a = pump(t, a, navigateMsg{to: viewBookings})

			if a.view != viewLogin {
				t.Errorf("view = %d, want viewLogin", a.view)
			}
			if a.toast.text != string(tc.notice) {
				t.Errorf("toast = %q, want %q", a.toast.text, tc.notice)
			}
			if _, err := a.env.manager().Load(ctx); err == nil {
				t.Error("session not cleared")
			}
		})
	}
}

func TestGuardWithoutSession(t *testing.T) {
	a := pump(t, newTestApp(nil), navigateMsg{to: viewSearch})
	if a.view != viewLogin {
		t.Errorf("view = %d, want viewLogin", a.view)
	}
	if a.toast.text != string(session.NoticeUnauthorized) {
		t.Errorf("toast = %q, want unauthorized notice", a.toast.text)
	}
}

func TestStartShowsPendingNoticeOnce(t *testing.T) {
	a := newTestApp(nil)
	ctx := context.Background()
	if err := a.env.manager().PushNotice(ctx, session.NoticeExpired); err != nil {
		t.Fatalf("PushNotice() error: %v", err)
	}

	for _, msg := range runCmd(a.start()) {
		a = pump(t, a, msg)
	}
	if a.toast.text != string(session.NoticeExpired) {
		t.Errorf("toast = %q, want expired notice", a.toast.text)
	}
	if n, _ := a.env.manager().TakeNotice(ctx); n != session.NoticeNone {
		t.Errorf("notice still pending: %q", n)
	}
}

func TestStartWithSessionOpensSearch(t *testing.T) {
	a := newTestApp(nil)
	if _, err := a.env.manager().Start(context.Background(), "tok", domain.RoleUser); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for _, msg := range runCmd(a.start()) {
		a = pump(t, a, msg)
	}
	if a.view != viewSearch {
		t.Errorf("view = %d, want viewSearch", a.view)
	}
}

func TestAppGlobalKeys(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/user/bookings": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
		},
	})
	a := newTestApp(c)
	if _, err := a.env.manager().Start(context.Background(), "tok", domain.RoleUser); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	a = pump(t, a, navigateMsg{to: viewSearch})
	if a.view != viewSearch || !a.search.editing() {
		t.Fatalf("expected search form focus, view = %d", a.view)
	}
	// Digits belong to the focused search field.
	a = pump(t, a, keyMsg("2"))
	if a.view != viewSearch {
		t.Fatalf("view = %d after typing in form, want viewSearch", a.view)
	}

	a = pump(t, a, keyMsg("esc"))
	a = pump(t, a, keyMsg("2"))
	if a.view != viewBookings {
		t.Fatalf("view = %d, want viewBookings", a.view)
	}

	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("'q' did not quit")
	}
}

func TestAppLogout(t *testing.T) {
	var loggedOut bool
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/user/bookings": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
		},
		"POST /api/auth/logout": func(w http.ResponseWriter, r *http.Request) {
			loggedOut = r.Header.Get("Authorization") == "Bearer tok"
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		},
	})
	a := newTestApp(c)
	if _, err := a.env.manager().Start(context.Background(), "tok", domain.RoleUser); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	a = pump(t, a, navigateMsg{to: viewBookings})

	a = pump(t, a, keyMsg("O"))

	if a.view != viewLogin {
		t.Errorf("view = %d, want viewLogin", a.view)
	}
	if !loggedOut {
		t.Error("server logout not called with the session token")
	}
	if _, err := a.env.manager().Load(context.Background()); err == nil {
		t.Error("session not cleared on logout")
	}
	if a.toast.text != "Logged out" {
		t.Errorf("toast = %q, want Logged out", a.toast.text)
	}
}

func TestAppViewChrome(t *testing.T) {
	a := newTestApp(nil)
	out := a.View()
	for _, want := range []string{"Log In", "Register", "Email", "ctrl+n"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines > a.height {
		t.Errorf("View() has %d lines, want at most %d", lines, a.height)
	}
}

func TestAsyncResultReachesOwnerView(t *testing.T) {
	a := newTestApp(nil)
	a.search = newSearchModel(a.env, a.env.client)
	a.search.loading = true
	a.view = viewBookings

	model, _ := a.Update(tripsLoadedMsg{page: &domain.TripPage{CurrentPage: 1, TotalPages: 1}})
	a = model.(App)
	if a.search.loading {
		t.Error("search result was not delivered while another view was active")
	}
}
