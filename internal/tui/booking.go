package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// Booking outcome toasts.
const (
	msgBookingSuccess = "Booking successful!"
	msgBookingFailed  = "Booking failed."
	msgSelectSeat     = "Select at least one seat"
)

type bookingModel struct {
	env        *env
	client     *client.Client
	tripID     string
	trip       *domain.Trip
	bus        *domain.Bus
	seats      *domain.SeatMap
	cursor     int // index into seats.Seats()
	loading    bool
	submitting bool
	spinner    spinner.Model
	confirm    confirm
	err        error
	status     string
	width      int
	height     int
}

type tripLoadedMsg struct {
	trip *domain.Trip
	bus  *domain.Bus
	err  error
}

type bookingDoneMsg struct {
	tripID  string
	seats   []int
	booking *domain.Booking
	err     error
}

func newBookingModel(e *env, c *client.Client, tripID string) bookingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return bookingModel{
		env:     e,
		client:  c,
		tripID:  tripID,
		loading: true,
		spinner: sp,
	}
}

func (m bookingModel) Init() tea.Cmd {
	return tea.Batch(m.loadTrip(), m.spinner.Tick)
}

// loadTrip fetches the trip, then its bus. A bus lookup failure is not fatal.
func (m bookingModel) loadTrip() tea.Cmd {
	c := m.client
	id := m.tripID
	logger := m.env.logger
	return func() tea.Msg {
		ctx := context.Background()
		trip, err := c.GetTrip(ctx, id)
		if err != nil {
			return tripLoadedMsg{err: err}
		}
		var bus *domain.Bus
		if trip.Bus.ID != "" {
			bus, err = c.GetBus(ctx, trip.Bus.ID)
			if err != nil {
				logger.Warn("load bus failed", "bus_id", trip.Bus.ID, "error", err)
				bus = nil
			}
		}
		return tripLoadedMsg{trip: trip, bus: bus}
	}
}

// bookable reports whether the trip can still take bookings.
func (m bookingModel) bookable() bool {
	return m.trip != nil && !m.trip.Expired(m.env.now()) && !m.trip.Unavailable()
}

func (m bookingModel) Update(msg tea.Msg) (bookingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tripLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.env.logger.Warn("load trip failed", "trip_id", m.tripID, "error", msg.err)
			return m, nil
		}
		m.trip = msg.trip
		m.bus = msg.bus
		m.seats = domain.NewSeatMap(*msg.trip)
		if m.cursor >= len(m.seats.Seats()) {
			m.cursor = 0
		}
		return m, nil

	case submitBookingMsg:
		return m.submit()

	case bookingDoneMsg:
		if msg.tripID != m.tripID || m.seats == nil {
			m.env.logger.Debug("drop stale booking result", "trip_id", msg.tripID, "current_trip_id", m.tripID)
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.env.logger.Warn("booking failed", "trip_id", m.tripID, "seats", msg.seats, "error", msg.err)
			return m, showToast(msgBookingFailed, toastError)
		}
		if msg.booking != nil {
			m.env.logger.Info("booking created", "booking_id", msg.booking.ID, "trip_id", m.tripID, "seats", msg.seats)
		}
		m.seats.MarkBooked(msg.seats)
		cmds := []tea.Cmd{showToast(msgBookingSuccess, toastSuccess)}
		if m.env.opts.RefetchAfterBooking {
			cmds = append(cmds, m.loadTrip())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.loading && !m.submitting {
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

func (m bookingModel) updateKeys(msg tea.KeyMsg) (bookingModel, tea.Cmd) {
	m.status = ""
	key := msg.String()

	if key == "esc" || key == "backspace" {
		return m, navigate(viewSearch)
	}
	if m.err != nil && key == "r" {
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.loadTrip(), m.spinner.Tick)
	}
	if m.seats == nil || !m.bookable() || m.submitting {
		return m, nil
	}

	n := len(m.seats.Seats())
	switch key {
	case "h", "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor-domain.SeatsPerRow >= 0 {
			m.cursor -= domain.SeatsPerRow
		}
	case "j", "down":
		if m.cursor+domain.SeatsPerRow < n {
			m.cursor += domain.SeatsPerRow
		}
	case " ", "enter":
		if n == 0 {
			return m, nil
		}
		seat := m.seats.Seats()[m.cursor]
		if err := m.seats.Toggle(seat); err != nil {
			if errors.Is(err, domain.ErrSeatBooked) {
				m.status = fmt.Sprintf("Seat %d is already booked", seat)
			} else {
				m.status = err.Error()
			}
		}
	case "b", "ctrl+s":
		return m.requestBooking()
	}
	return m, nil
}

// requestBooking opens the confirmation prompt for the current selection.
func (m bookingModel) requestBooking() (bookingModel, tea.Cmd) {
	if m.seats.Count() == 0 {
		return m, showToast(msgSelectSeat, toastError)
	}
	seats := m.seats.Selected()
	total := m.seats.Total()
	prompt := fmt.Sprintf("Book seat(s) %s for %s?", domain.FormatSeats(seats), domain.FormatPrice(total))
	m.confirm = askConfirm(prompt, func() tea.Msg { return submitBookingMsg{} })
	return m, nil
}

// submitBookingMsg is emitted when the booking prompt is accepted.
type submitBookingMsg struct{}

func (m bookingModel) submit() (bookingModel, tea.Cmd) {
	if m.seats == nil || m.seats.Count() == 0 {
		return m, showToast(msgSelectSeat, toastError)
	}
	m.submitting = true
	req := client.NewCreateBookingRequest(m.trip.ID, m.seats.Selected(), m.seats.Total())
	c := m.client
	book := func() tea.Msg {
		b, err := c.CreateBooking(context.Background(), req)
		return bookingDoneMsg{tripID: req.TripID, seats: req.SeatNumbers, booking: b, err: err}
	}
	return m, tea.Batch(book, m.spinner.Tick)
}

func (m bookingModel) helpKeys() string {
	if m.confirm.active() {
		return helpBar("y", "confirm", "n", "cancel")
	}
	if m.err != nil {
		return helpBar("r", "retry", "esc", "back", "q", "quit")
	}
	return helpBar("arrows", "move", "space", "select", "b", "book", "esc", "back", "q", "quit")
}

func (m bookingModel) View() string {
	var b strings.Builder

	if m.loading {
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Loading trip...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString("  " + errorStyle.Render("Unable to load trip details. Please try again later.") + "\n")
		return b.String()
	}
	if m.trip == nil {
		return ""
	}

	t := m.trip
	b.WriteString("  " + titleStyle.Render(t.Source+" → "+t.Destination) + "\n")
	fmt.Fprintf(&b, "  %s  %s  %s\n",
		dimStyle.Render(formatClock(t.DepartureTime)+" – "+formatClock(t.ArrivalTime)),
		dimStyle.Render(domain.FormatDuration(t.Duration())),
		priceStyle.Render(domain.FormatPrice(t.Price)+" / seat"))

	busLine := t.Bus.BusNumber
	if m.bus != nil {
		busLine = strings.TrimSpace(m.bus.BusNumber + "  " + m.bus.BusType)
	}
	if busLine != "" {
		b.WriteString("  " + metaStyle.Render("Bus "+busLine) + "\n")
	}
	if t.Operator.Name != "" {
		b.WriteString("  " + metaStyle.Render("Operated by "+t.Operator.Name) + "\n")
	}
	b.WriteString("\n")

	switch {
	case t.Expired(m.env.now()):
		b.WriteString("  " + bannerStyle.Render("This trip has already completed and can no longer be booked.") + "\n\n")
	case t.Unavailable():
		b.WriteString("  " + bannerStyle.Render("All seats on this trip are booked.") + "\n\n")
	}

	b.WriteString(m.renderGrid())

	b.WriteString("\n  " + seatAvailableStyle.Render("[ 1]") + dimStyle.Render(" available  ") +
		seatSelectedStyle.Render("[ 1]") + dimStyle.Render(" selected  ") +
		seatBookedStyle.Render("[ 1]") + dimStyle.Render(" booked") + "\n\n")

	fmt.Fprintf(&b, "  %s %s   %s %s\n",
		dimStyle.Render("Selected:"), normalStyle.Render(domain.FormatSeats(m.seats.Selected())),
		dimStyle.Render("Total:"), priceStyle.Render(domain.FormatPrice(m.seats.Total())))

	if m.status != "" {
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	}
	if m.submitting {
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Booking...") + "\n")
	}
	if m.confirm.active() {
		b.WriteString("\n  " + m.confirm.View() + "\n")
	}
	return b.String()
}

// renderGrid draws the seats SeatsPerRow to a row with an aisle after AisleAfter.
func (m bookingModel) renderGrid() string {
	var b strings.Builder
	idx := 0
	for _, row := range domain.SeatRows(m.seats.Seats(), domain.SeatsPerRow) {
		b.WriteString("  ")
		for i, seat := range row {
			if i == domain.AisleAfter {
				b.WriteString("    ")
			}
			label := fmt.Sprintf("[%2d]", seat)
			style := seatStyle(m.seats.State(seat))
			if idx == m.cursor && m.bookable() {
				label = seatCursorStyle.Render("›") + style.Render(label) + seatCursorStyle.Render("‹")
			} else {
				label = " " + style.Render(label) + " "
			}
			b.WriteString(label)
			idx++
		}
		b.WriteString("\n")
	}
	return b.String()
}
