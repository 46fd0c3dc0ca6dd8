package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/naveenspark/busline/internal/session"
	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewSearch
	viewBooking
	viewBookings
	viewCancel
)

// protected reports whether v requires a session.
func (v view) protected() bool {
	return v >= viewSearch
}

// navigateMsg asks the app to switch views. Protected targets pass through
// the session guard first.
type navigateMsg struct {
	to        view
	tripID    string
	bookingID string
}

func navigate(to view) tea.Cmd {
	return navigateTo(navigateMsg{to: to})
}

func navigateTo(msg navigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// routedMsg carries the guard's verdict for a pending navigation.
type routedMsg struct {
	nav      navigateMsg
	decision session.Decision
}

// startMsg reports the pending notice and whether a session exists at launch.
type startMsg struct {
	notice     session.Notice
	hasSession bool
}

type loggedOutMsg struct{}

// Options configures the TUI.
type Options struct {
	Client              *client.Client
	Guard               *session.Guard
	Logger              *slog.Logger
	TicketsDir          string
	OpenTickets         bool
	RefetchAfterBooking bool
	PageSize            int
}

// env is shared by every view.
type env struct {
	client *client.Client
	guard  *session.Guard
	logger *slog.Logger
	opts   Options
}

func (e *env) manager() *session.Manager {
	return e.guard.Manager()
}

func (e *env) now() time.Time {
	return e.guard.Manager().Now()
}

// App is the root Bubbletea model.
type App struct {
	env         *env
	view        view
	session     domain.Session
	identity    string
	login       loginModel
	register    registerModel
	search      searchModel
	searchToken string // token the search model was built with
	booking     bookingModel
	bookings    bookingsModel
	cancel      cancelModel
	toast       toast
	width       int
	height      int
	frame       int // logo shimmer animation frame
}

// NewApp creates a new TUI application. Missing options fall back to an
// in-memory session store, a default client and a discarding logger.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Client == nil {
		opts.Client = client.New(client.DefaultBaseURL, "", client.WithLogger(opts.Logger))
	}
	if opts.Guard == nil {
		opts.Guard = session.NewGuard(session.NewManager(session.NewMemoryStore(), session.WithLogger(opts.Logger)))
	}
	if opts.PageSize == 0 {
		opts.PageSize = domain.PageSizes[0]
	}
	e := &env{
		client: opts.Client,
		guard:  opts.Guard,
		logger: opts.Logger.With("component", "tui"),
		opts:   opts,
	}
	return App{
		env:      e,
		view:     viewLogin,
		login:    newLoginModel(e, e.client),
		register: newRegisterModel(e, e.client),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.login.Init(), shimmerTickCmd(), a.start())
}

func (a App) start() tea.Cmd {
	mgr := a.env.manager()
	logger := a.env.logger
	return func() tea.Msg {
		ctx := context.Background()
		n, err := mgr.TakeNotice(ctx)
		if err != nil {
			logger.Warn("read notice failed", "error", err)
		}
		_, err = mgr.Load(ctx)
		return startMsg{notice: n, hasSession: err == nil}
	}
}

func (a App) guardCmd(nav navigateMsg) tea.Cmd {
	g := a.env.guard
	return func() tea.Msg {
		return routedMsg{nav: nav, decision: g.Check(context.Background(), domain.RoleUser)}
	}
}

func (a App) logout() tea.Cmd {
	c := a.env.client.WithToken(a.session.Token)
	mgr := a.env.manager()
	logger := a.env.logger
	return func() tea.Msg {
		ctx := context.Background()
		if err := c.Logout(ctx); err != nil {
			logger.Debug("remote logout failed", "error", err)
		}
		if err := mgr.Clear(ctx); err != nil {
			logger.Warn("clear session failed", "error", err)
		}
		return loggedOutMsg{}
	}
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + toast(1) + help(1) = 5 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
}

// enter switches to nav.to under session s, rebuilding the target view.
func (a App) enter(nav navigateMsg, s domain.Session) (App, tea.Cmd) {
	if s.Token != a.session.Token {
		a.identity = ""
		if s.Token != "" {
			if id, err := session.Identity(s.Token); err == nil {
				a.identity = id
			}
		}
	}
	a.session = s
	a.view = nav.to
	c := a.env.client.WithToken(s.Token)
	size := a.bodySize()

	var cmd tea.Cmd
	switch nav.to {
	case viewLogin:
		a.login = newLoginModel(a.env, a.env.client)
		a.login, _ = a.login.Update(size)
		cmd = a.login.Init()
	case viewRegister:
		a.register = newRegisterModel(a.env, a.env.client)
		a.register, _ = a.register.Update(size)
		cmd = a.register.Init()
	case viewSearch:
		if a.searchToken != s.Token {
			a.search = newSearchModel(a.env, c)
			a.search, _ = a.search.Update(size)
			a.searchToken = s.Token
		}
		cmd = a.search.Init()
	case viewBooking:
		a.booking = newBookingModel(a.env, c, nav.tripID)
		a.booking, _ = a.booking.Update(size)
		cmd = a.booking.Init()
	case viewBookings:
		a.bookings = newBookingsModel(a.env, c)
		a.bookings, _ = a.bookings.Update(size)
		cmd = a.bookings.Init()
	case viewCancel:
		a.cancel = newCancelModel(a.env, c, nav.bookingID)
		a.cancel, _ = a.cancel.Update(size)
		cmd = a.cancel.Init()
	}
	return a, cmd
}

// toLogin drops the session and shows the login form with an optional notice.
func (a App) toLogin(notice string, kind toastKind) (App, tea.Cmd) {
	a.searchToken = ""
	a, cmd := a.enter(navigateMsg{to: viewLogin}, domain.Session{})
	if notice == "" {
		return a, cmd
	}
	return a, tea.Batch(cmd, showToast(notice, kind))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		size := a.bodySize()
		a.login, _ = a.login.Update(size)
		a.register, _ = a.register.Update(size)
		a.search, _ = a.search.Update(size)
		a.booking, _ = a.booking.Update(size)
		a.bookings, _ = a.bookings.Update(size)
		a.cancel, _ = a.cancel.Update(size)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case toastMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.show(msg)
		return a, cmd

	case toastExpiredMsg:
		a.toast = a.toast.expire(msg)
		return a, nil

	case startMsg:
		var cmds []tea.Cmd
		if msg.notice != session.NoticeNone {
			cmds = append(cmds, showToast(string(msg.notice), toastError))
		}
		if msg.hasSession {
			cmds = append(cmds, navigate(viewSearch))
		}
		return a, tea.Batch(cmds...)

	case navigateMsg:
		if !msg.to.protected() {
			return a.enter(msg, domain.Session{})
		}
		return a, a.guardCmd(msg)

	case routedMsg:
		if !msg.decision.Allowed {
			return a.toLogin(string(msg.decision.Notice), toastError)
		}
		return a.enter(msg.nav, msg.decision.Session)

	case loggedOutMsg:
		return a.toLogin("Logged out", toastInfo)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				if a.view.protected() && a.view != viewSearch {
					return a, navigate(viewSearch)
				}
				return a, nil
			case "2":
				if a.view.protected() && a.view != viewBookings {
					return a, navigate(viewBookings)
				}
				return a, nil
			case "O":
				if a.view.protected() {
					return a, a.logout()
				}
			}
		}
	}

	return a.route(msg)
}

// route delivers msg to the view that owns it. Async results go to their
// originating view even if the user has moved on; everything else goes to
// the active view.
func (a App) route(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case loginDoneMsg:
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	case registerDoneMsg:
		a.register, cmd = a.register.Update(msg)
		return a, cmd
	case tripsLoadedMsg:
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	case tripLoadedMsg, bookingDoneMsg, submitBookingMsg:
		a.booking, cmd = a.booking.Update(msg)
		return a, cmd
	case bookingsLoadedMsg, ticketSavedMsg, copyResultMsg:
		a.bookings, cmd = a.bookings.Update(msg)
		return a, cmd
	case bookingLoadedMsg, cancelSeatMsg, cancelAllMsg, cancelDoneMsg:
		a.cancel, cmd = a.cancel.Update(msg)
		return a, cmd
	case spinner.TickMsg:
		// Ticks carry their spinner's id, so only the owning view advances.
		var c1, c2, c3, c4, c5, c6 tea.Cmd
		a.login, c1 = a.login.Update(msg)
		a.register, c2 = a.register.Update(msg)
		a.search, c3 = a.search.Update(msg)
		a.booking, c4 = a.booking.Update(msg)
		a.bookings, c5 = a.bookings.Update(msg)
		a.cancel, c6 = a.cancel.Update(msg)
		return a, tea.Batch(c1, c2, c3, c4, c5, c6)
	}

	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewSearch:
		a.search, cmd = a.search.Update(msg)
	case viewBooking:
		a.booking, cmd = a.booking.Update(msg)
	case viewBookings:
		a.bookings, cmd = a.bookings.Update(msg)
	case viewCancel:
		a.cancel, cmd = a.cancel.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin, viewRegister:
		return true
	case viewSearch:
		return a.search.editing()
	case viewBooking:
		return a.booking.confirm.active()
	case viewCancel:
		return a.cancel.confirm.active()
	}
	return false
}

func (a App) helpKeys() string {
	switch a.view {
	case viewLogin:
		return a.login.helpKeys()
	case viewRegister:
		return a.register.helpKeys()
	case viewSearch:
		return a.search.helpKeys()
	case viewBooking:
		return a.booking.helpKeys()
	case viewBookings:
		return a.bookings.helpKeys()
	case viewCancel:
		return a.cancel.helpKeys()
	}
	return ""
}

func (a App) body() string {
	switch a.view {
	case viewLogin:
		return a.login.View()
	case viewRegister:
		return a.register.View()
	case viewSearch:
		return a.search.View()
	case viewBooking:
		return a.booking.View()
	case viewBookings:
		return a.bookings.View()
	case viewCancel:
		return a.cancel.View()
	}
	return ""
}

func (a App) tabBar() string {
	type tabEntry struct {
		key  string
		name string
		on   bool
	}
	var tabs []tabEntry
	if a.view.protected() {
		tabs = []tabEntry{
			{"1", "Search", a.view == viewSearch || a.view == viewBooking},
			{"2", "My Bookings", a.view == viewBookings || a.view == viewCancel},
		}
	} else {
		tabs = []tabEntry{
			{"", "Log In", a.view == viewLogin},
			{"", "Register", a.view == viewRegister},
		}
	}

	colWidth := a.width / len(tabs)
	var bar strings.Builder
	for _, t := range tabs {
		var label string
		if t.on {
			label = selectedStyle.Underline(true).Render(t.name)
			if t.key != "" {
				label = accentStyle.Render(t.key) + " " + label
			}
		} else {
			label = dimStyle.Render(t.name)
			if t.key != "" {
				label = metaStyle.Render(t.key) + " " + label
			}
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		bar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	return bar.String()
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)

	statsLine := ""
	if a.view.protected() && a.session.Token != "" {
		var parts []string
		if a.identity != "" {
			parts = append(parts, a.identity)
		}
		parts = append(parts, "session expires "+humanize.Time(a.session.ExpiresAt()))
		statsLine = metaStyle.Render(strings.Join(parts, " · "))
	}
	header += "\n" + centered(statsLine, a.width)

	body := strings.TrimRight(truncateToHeight(a.body(), a.height-5), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, a.tabBar(), body, a.toast.View(), a.helpKeys())
}
