package tui

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/internal/browser"
	"github.com/naveenspark/busline/internal/ticket"
	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// bookingsPerPage is the page size of the bookings table.
const bookingsPerPage = 10

type sortField int

const (
	sortDate sortField = iota
	sortID
	sortPrice
	sortStatus
	sortPayment
	numSortFields
)

var sortFieldNames = [numSortFields]string{"date", "id", "price", "status", "payment"}

type bookingsModel struct {
	env       *env
	client    *client.Client
	bookings  []domain.Booking // sorted view
	pager     paginator.Model
	cursor    int // row within the current page
	sortBy    sortField
	ascending bool
	loading   bool
	spinner   spinner.Model
	err       error
	width     int
	height    int
}

type bookingsLoadedMsg struct {
	bookings []domain.Booking
	err      error
}

type ticketSavedMsg struct {
	path string
	err  error
}

type copyResultMsg struct{ err error }

func newBookingsModel(e *env, c *client.Client) bookingsModel {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = bookingsPerPage

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return bookingsModel{
		env:     e,
		client:  c,
		pager:   p,
		loading: true,
		spinner: sp,
	}
}

func (m bookingsModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m bookingsModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		bookings, err := c.ListBookings(context.Background())
		return bookingsLoadedMsg{bookings: bookings, err: err}
	}
}

// sortBookings orders bookings in place by field.
func sortBookings(bookings []domain.Booking, field sortField, ascending bool) {
	slices.SortStableFunc(bookings, func(a, b domain.Booking) int {
		var c int
		switch field {
		case sortID:
			c = cmp.Compare(a.ID, b.ID)
		case sortPrice:
			c = cmp.Compare(a.TotalPrice, b.TotalPrice)
		case sortStatus:
			c = cmp.Compare(a.BookingStatus, b.BookingStatus)
		case sortPayment:
			c = cmp.Compare(a.PaymentStatus, b.PaymentStatus)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if !ascending {
			c = -c
		}
		return c
	})
}

func (m *bookingsModel) resort() {
	sortBookings(m.bookings, m.sortBy, m.ascending)
	m.pager.SetTotalPages(len(m.bookings))
	if m.pager.Page >= max(m.pager.TotalPages, 1) {
		m.pager.Page = 0
	}
	m.clampCursor()
}

func (m *bookingsModel) clampCursor() {
	start, end := m.pager.GetSliceBounds(len(m.bookings))
	if m.cursor >= end-start {
		m.cursor = max(end-start-1, 0)
	}
}

// selected returns the booking under the cursor.
func (m bookingsModel) selected() (domain.Booking, bool) {
	start, end := m.pager.GetSliceBounds(len(m.bookings))
	i := start + m.cursor
	if i >= end || i >= len(m.bookings) {
		return domain.Booking{}, false
	}
	return m.bookings[i], true
}

func (m bookingsModel) Update(msg tea.Msg) (bookingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bookingsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.env.logger.Warn("list bookings failed", "error", msg.err)
			return m, nil
		}
		m.bookings = slices.Clone(msg.bookings)
		m.resort()
		return m, nil

	case ticketSavedMsg:
		if msg.err != nil {
			m.env.logger.Warn("ticket download failed", "error", msg.err)
			return m, showToast("Failed to download ticket.", toastError)
		}
		return m, showToast("Ticket saved to "+msg.path, toastSuccess)

	case copyResultMsg:
		if msg.err != nil {
			return m, showToast("Clipboard unavailable", toastError)
		}
		return m, showToast("Booking ID copied", toastInfo)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m bookingsModel) updateKeys(msg tea.KeyMsg) (bookingsModel, tea.Cmd) {
	switch msg.String() {
	case "R":
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.load(), m.spinner.Tick)
	}
	if m.loading || m.err != nil {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		start, end := m.pager.GetSliceBounds(len(m.bookings))
		if m.cursor < end-start-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "h", "left":
		if m.pager.Page > 0 {
			m.pager.PrevPage()
			m.cursor = 0
		}
	case "l", "right":
		if !m.pager.OnLastPage() {
			m.pager.NextPage()
			m.cursor = 0
		}
	case "s":
		m.sortBy = (m.sortBy + 1) % numSortFields
		m.resort()
	case "r":
		m.ascending = !m.ascending
		m.resort()
	case "d":
		if b, ok := m.selected(); ok {
			return m, m.download(b)
		}
	case "y":
		if b, ok := m.selected(); ok {
			id := b.ID
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(id)}
			}
		}
	case "c", "enter":
		b, ok := m.selected()
		if !ok {
			return m, nil
		}
		if b.Cancelled() {
			return m, showToast("Booking is already cancelled", toastInfo)
		}
		return m, navigateTo(navigateMsg{to: viewCancel, bookingID: b.ID})
	}
	return m, nil
}

func (m bookingsModel) download(b domain.Booking) tea.Cmd {
	dir := m.env.opts.TicketsDir
	open := m.env.opts.OpenTickets
	logger := m.env.logger
	return func() tea.Msg {
		path, err := ticket.Save(dir, b)
		if err != nil {
			return ticketSavedMsg{err: err}
		}
		logger.Info("ticket saved", "booking_id", b.ID, "path", path)
		if open {
			if err := browser.OpenFile(path); err != nil {
				logger.Warn("open ticket failed", "path", path, "error", err)
			}
		}
		return ticketSavedMsg{path: path}
	}
}

func (m bookingsModel) helpKeys() string {
	return helpBar("1-2", "tabs", "j/k", "nav", "h/l", "page", "s", "sort", "r", "reverse",
		"d", "download", "c", "cancel", "y", "copy id", "R", "reload", "O", "logout", "q", "quit")
}

func (m bookingsModel) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("My Bookings") + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Loading bookings...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render("Unable to fetch bookings. Please try again later.") + "\n")
		b.WriteString("  " + dimStyle.Render("Press R to retry.") + "\n")
		return b.String()
	case len(m.bookings) == 0:
		b.WriteString("  " + dimStyle.Render("You have no bookings yet.") + "\n")
		return b.String()
	}

	dir := "↓"
	if m.ascending {
		dir = "↑"
	}
	header := "  " + padRight("Booking ID", 26) + padRight("Booked / Cancelled", 22) +
		padRight("Total Price", 14) + padRight("Status", 12) + padRight("Payment", 10) + "Date"
	b.WriteString(sectionHeaderStyle.Render(header) + "\n")

	start, end := m.pager.GetSliceBounds(len(m.bookings))
	for i, bk := range m.bookings[start:end] {
		b.WriteString(renderBookingRow(bk, i == m.cursor) + "\n")
	}

	b.WriteString("\n  " + m.pager.View() + "  " +
		metaStyle.Render(fmt.Sprintf("sorted by %s %s · %d bookings", sortFieldNames[m.sortBy], dir, len(m.bookings))) + "\n")
	return b.String()
}

func renderBookingRow(bk domain.Booking, selected bool) string {
	seats := domain.FormatSeats(bk.SeatsBooked) + " / " + domain.FormatSeats(bk.SeatsCancelled)
	date := formatDate(bk.CreatedAt)
	if rel := relTime(bk.CreatedAt); rel != "" {
		date += " " + metaStyle.Render("("+rel+")")
	}

	cursor := "  "
	id := normalStyle.Render(padRight(bk.ID, 26))
	if selected {
		cursor = accentStyle.Render("> ")
		id = selectedStyle.Render(padRight(bk.ID, 26))
	}
	line := cursor + id +
		dimStyle.Render(padRight(seats, 22)) +
		priceStyle.Render(padRight(domain.FormatPrice(bk.TotalPrice), 14)) +
		StatusStyle(bk.BookingStatus).Render(padRight(bk.BookingStatus, 12)) +
		StatusStyle(bk.PaymentStatus).Render(padRight(bk.PaymentStatus, 10)) +
		dimStyle.Render(date)
	if selected {
		return selectedRowBg.Render(line)
	}
	return line
}
