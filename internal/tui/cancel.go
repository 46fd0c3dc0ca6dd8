package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// Cancellation messages.
const (
	msgFetchBookingFailed = "Unable to fetch booking details. Please try again later."
	msgCancelSeatFailed   = "Failed to cancel seat. Please try again."
	msgCancelAllFailed    = "Failed to cancel booking. Please try again."
	promptCancelAll       = "Are you sure you want to cancel the entire booking? This cannot be undone."
)

func promptCancelSeat(seat int) string {
	return fmt.Sprintf("Are you sure you want to cancel seat %d?", seat)
}

type cancelModel struct {
	env       *env
	client    *client.Client
	bookingID string
	booking   *domain.Booking
	cursor    int // index into booking.ActionableSeats()
	loading   bool
	busy      bool
	spinner   spinner.Model
	confirm   confirm
	err       error
	width     int
	height    int
}

type bookingLoadedMsg struct {
	booking *domain.Booking
	err     error
}

// cancelSeatMsg and cancelAllMsg are emitted when a prompt is accepted.
type cancelSeatMsg struct{ seat int }
type cancelAllMsg struct{}

type cancelDoneMsg struct {
	seat    int // 0 for a whole-booking cancel
	message string
	err     error
}

func newCancelModel(e *env, c *client.Client, bookingID string) cancelModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return cancelModel{
		env:       e,
		client:    c,
		bookingID: bookingID,
		loading:   true,
		spinner:   sp,
	}
}

func (m cancelModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m cancelModel) load() tea.Cmd {
	c := m.client
	id := m.bookingID
	return func() tea.Msg {
		b, err := c.GetBooking(context.Background(), id)
		return bookingLoadedMsg{booking: b, err: err}
	}
}

func (m cancelModel) seats() []int {
	if m.booking == nil {
		return nil
	}
	return m.booking.ActionableSeats()
}

func (m cancelModel) Update(msg tea.Msg) (cancelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bookingLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.env.logger.Warn("load booking failed", "booking_id", m.bookingID, "error", msg.err)
			m.booking = nil
			return m, nil
		}
		m.booking = msg.booking
		if m.cursor >= len(m.seats()) {
			m.cursor = max(len(m.seats())-1, 0)
		}
		return m, nil

	case cancelSeatMsg:
		m.busy = true
		c, id, seat := m.client, m.bookingID, msg.seat
		return m, tea.Batch(func() tea.Msg {
			res, err := c.CancelSeat(context.Background(), id, seat)
			return cancelDoneMsg{seat: seat, message: resultMessage(res), err: err}
		}, m.spinner.Tick)

	case cancelAllMsg:
		m.busy = true
		c, id := m.client, m.bookingID
		return m, tea.Batch(func() tea.Msg {
			res, err := c.CancelBooking(context.Background(), id)
			return cancelDoneMsg{message: resultMessage(res), err: err}
		}, m.spinner.Tick)

	case cancelDoneMsg:
		m.busy = false
		m.loading = true
		var toast tea.Cmd
		switch {
		case msg.err != nil && msg.seat != 0:
			m.env.logger.Warn("cancel seat failed", "booking_id", m.bookingID, "seat", msg.seat, "error", msg.err)
			toast = showToast(msgCancelSeatFailed, toastError)
		case msg.err != nil:
			m.env.logger.Warn("cancel booking failed", "booking_id", m.bookingID, "error", msg.err)
			toast = showToast(msgCancelAllFailed, toastError)
		case msg.seat != 0:
			m.env.logger.Info("seat cancelled", "booking_id", m.bookingID, "seat", msg.seat)
			toast = showToast(orDefault(msg.message, fmt.Sprintf("Seat %d cancelled", msg.seat)), toastSuccess)
		default:
			m.env.logger.Info("booking cancelled", "booking_id", m.bookingID)
			toast = showToast(orDefault(msg.message, "Booking cancelled"), toastSuccess)
		}
		return m, tea.Batch(toast, m.load(), m.spinner.Tick)

	case spinner.TickMsg:
		if !m.loading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirm.active() {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.handle(msg)
			return m, cmd
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m cancelModel) updateKeys(msg tea.KeyMsg) (cancelModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		return m, navigate(viewBookings)
	case "r":
		if m.err != nil {
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.load(), m.spinner.Tick)
		}
	}
	if m.loading || m.busy || m.booking == nil {
		return m, nil
	}

	seats := m.seats()
	switch msg.String() {
	case "j", "down", "l", "right":
		if m.cursor < len(seats)-1 {
			m.cursor++
		}
	case "k", "up", "h", "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "x", "enter":
		if m.cursor < len(seats) {
			seat := seats[m.cursor]
			m.confirm = askConfirm(promptCancelSeat(seat), func() tea.Msg { return cancelSeatMsg{seat: seat} })
		}
	case "C":
		if len(seats) > 0 {
			m.confirm = askConfirm(promptCancelAll, func() tea.Msg { return cancelAllMsg{} })
		}
	}
	return m, nil
}

func (m cancelModel) helpKeys() string {
	if m.confirm.active() {
		return helpBar("y", "confirm", "n", "keep")
	}
	if m.err != nil {
		return helpBar("r", "retry", "esc", "back", "q", "quit")
	}
	return helpBar("j/k", "seat", "x", "cancel seat", "C", "cancel booking", "esc", "back", "q", "quit")
}

func (m cancelModel) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Cancel Booking") + "\n\n")

	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(msgFetchBookingFailed) + "\n")
		b.WriteString("  " + dimStyle.Render("Press r to retry.") + "\n")
		return b.String()
	}
	if m.booking == nil {
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Loading booking...") + "\n")
		return b.String()
	}

	bk := m.booking
	rows := [][2]string{
		{"Booking ID", bk.ID},
		{"Seats booked", domain.FormatSeats(bk.SeatsBooked)},
		{"Seats cancelled", domain.FormatSeats(bk.SeatsCancelled)},
		{"Total price", domain.FormatPrice(bk.TotalPrice)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(r[0]), normalStyle.Render(r[1]))
	}
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Status"), StatusStyle(bk.BookingStatus).Render(bk.BookingStatus))
	fmt.Fprintf(&b, "  %s %s\n\n", labelStyle.Render("Payment"), StatusStyle(bk.PaymentStatus).Render(bk.PaymentStatus))

	seats := m.seats()
	if len(seats) == 0 {
		b.WriteString("  " + dimStyle.Render("No seats available to cancel.") + "\n")
	} else {
		b.WriteString("  " + sectionHeaderStyle.Render("Seats") + "\n  ")
		for i, seat := range seats {
			label := fmt.Sprintf("[%2d]", seat)
			if i == m.cursor {
				b.WriteString(seatCursorStyle.Render("›") + seatSelectedStyle.Render(label) + seatCursorStyle.Render("‹"))
			} else {
				b.WriteString(" " + seatAvailableStyle.Render(label) + " ")
			}
		}
		b.WriteString("\n")
	}

	if m.loading || m.busy {
		b.WriteString("\n  " + m.spinner.View() + " " + dimStyle.Render("Updating...") + "\n")
	}
	if m.confirm.active() {
		b.WriteString("\n  " + m.confirm.View() + "\n")
	}
	return b.String()
}

func resultMessage(res *client.CancellationResult) string {
	if res == nil {
		return ""
	}
	return res.Message
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
