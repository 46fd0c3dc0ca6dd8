package tui

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

func makeTestTrip() domain.Trip {
	return domain.Trip{
		ID:             "t1",
		Source:         "Pune",
		Destination:    "Goa",
		DepartureTime:  testNow.Add(2 * time.Hour),
		ArrivalTime:    testNow.Add(8 * time.Hour),
		Price:          500,
		AvailableSeats: 7,
		TotalSeats:     []int{1, 2, 3, 4, 5, 6, 7, 8},
		SeatNumbers:    []int{1, 3, 4, 5, 6, 7, 8},
		Bus:            domain.BusRef{ID: "bus1", BusNumber: "MH12AB1234"},
	}
}

func newLoadedBookingModel(t *testing.T, c *client.Client, trip domain.Trip) bookingModel {
	t.Helper()
	m := newBookingModel(newTestEnv(c), c, trip.ID)
	m, _ = m.Update(tripLoadedMsg{trip: &trip})
	if m.seats == nil {
		t.Fatal("seat map not built")
	}
	return m
}

func TestBookingToggleAndTotal(t *testing.T) {
	m := newLoadedBookingModel(t, nil, makeTestTrip())

	m, _ = m.Update(keyMsg("space")) // seat 1
	m, _ = m.Update(keyMsg("l"))
	m, _ = m.Update(keyMsg("l"))
	m, _ = m.Update(keyMsg("space")) // seat 3

	if got := m.seats.Selected(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("Selected() = %v, want [1 3]", got)
	}
	if got := m.seats.Total(); got != 1000 {
		t.Errorf("Total() = %v, want 1000", got)
	}
	view := m.View()
	if !strings.Contains(view, "1, 3") || !strings.Contains(view, "₹1,000") {
		t.Errorf("View() missing selection summary:\n%s", view)
	}

	m, _ = m.Update(keyMsg("space")) // deselect seat 3
	if got := m.seats.Total(); got != 500 {
		t.Errorf("Total() after deselect = %v, want 500", got)
	}
}

func TestBookingBookedSeatNotSelectable(t *testing.T) {
	m := newLoadedBookingModel(t, nil, makeTestTrip())
	m, _ = m.Update(keyMsg("l")) // seat 2, booked
	m, _ = m.Update(keyMsg("space"))

	if m.seats.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.seats.Count())
	}
	if m.status != "Seat 2 is already booked" {
		t.Errorf("status = %q", m.status)
	}
}

func TestBookingEmptySelectionToast(t *testing.T) {
	m := newLoadedBookingModel(t, nil, makeTestTrip())
	m, out := drive(t, m, bookingModel.Update, keyMsg("b"))

	tm, ok := findToast(out)
	if !ok || tm.text != msgSelectSeat || tm.kind != toastError {
		t.Errorf("toast = %+v, want %q error", tm, msgSelectSeat)
	}
	if m.confirm.active() {
		t.Error("confirm opened without a selection")
	}
}

func TestBookingConfirmAndSubmit(t *testing.T) {
	var got client.CreateBookingRequest
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/user/bookings/t1": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
			writeJSON(w, http.StatusCreated, map[string]any{
				"success": true,
				"data":    map[string]any{"_id": "b1", "seatsBooked": got.SeatNumbers, "totalPrice": got.TotalAmount},
			})
		},
	})
	m := newLoadedBookingModel(t, c, makeTestTrip())
	m, _ = m.Update(keyMsg("space"))

	m, _ = m.Update(keyMsg("b"))
	if !m.confirm.active() || !strings.Contains(m.confirm.prompt, "₹500") {
		t.Fatalf("confirm = %+v, want prompt with total", m.confirm)
	}
	m, out := drive(t, m, bookingModel.Update, keyMsg("y"))

	if !slices.Equal(got.SeatNumbers, []int{1}) || got.Seats != 1 || got.TotalAmount != 500 {
		t.Errorf("request = %+v", got)
	}
	if tm, ok := findToast(out); !ok || tm.text != msgBookingSuccess {
		t.Errorf("toast = %+v, want %q", tm, msgBookingSuccess)
	}
	if m.seats.State(1) != domain.SeatBooked {
		t.Error("seat 1 not marked booked")
	}
	if m.seats.Count() != 0 {
		t.Errorf("selection not cleared: %v", m.seats.Selected())
	}
}

func TestBookingFailureKeepsSelection(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/user/bookings/t1": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Seat already booked"})
		},
	})
	m := newLoadedBookingModel(t, c, makeTestTrip())
	m, _ = m.Update(keyMsg("space"))
	m, _ = m.Update(keyMsg("b"))
	m, out := drive(t, m, bookingModel.Update, keyMsg("y"))

	if tm, ok := findToast(out); !ok || tm.text != msgBookingFailed {
		t.Errorf("toast = %+v, want %q", tm, msgBookingFailed)
	}
	if m.seats.Count() != 1 {
		t.Errorf("Count() = %d, want selection kept", m.seats.Count())
	}
}

func TestBookingDeclinedConfirm(t *testing.T) {
	m := newLoadedBookingModel(t, nil, makeTestTrip())
	m, _ = m.Update(keyMsg("space"))
	m, _ = m.Update(keyMsg("b"))
	m, cmd := m.Update(keyMsg("n"))
	if cmd != nil || m.confirm.active() {
		t.Error("declined confirm should close without a command")
	}
}

func TestBookingClosedTrips(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Trip)
		banner string
	}{
		{"expired", func(tr *domain.Trip) {
			tr.DepartureTime = testNow.Add(-8 * time.Hour)
			tr.ArrivalTime = testNow.Add(-time.Hour)
		}, "already completed"},
		{"sold out", func(tr *domain.Trip) { tr.SeatNumbers = nil }, "All seats on this trip are booked"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trip := makeTestTrip()
			tc.mutate(&trip)
			m := newLoadedBookingModel(t, nil, trip)

			m, _ = m.Update(keyMsg("space"))
			if m.seats.Count() != 0 {
				t.Error("seat selected on a closed trip")
			}
			if view := m.View(); !strings.Contains(view, tc.banner) {
				t.Errorf("View() missing %q:\n%s", tc.banner, view)
			}
		})
	}
}

func TestBookingLoadTripWithBus(t *testing.T) {
	trip := makeTestTrip()
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/user/trips/t1": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": trip})
		},
		"GET /api/user/buses/bus1": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"_id": "bus1", "busNumber": "MH12AB1234", "busType": "Sleeper",
			}})
		},
	})
	m := newBookingModel(newTestEnv(c), c, "t1")
	m, _ = drive(t, m, bookingModel.Update, m.loadTrip()())

	if m.loading || m.err != nil {
		t.Fatalf("loading = %v, err = %v", m.loading, m.err)
	}
	if m.bus == nil || m.bus.BusType != "Sleeper" {
		t.Errorf("bus = %+v", m.bus)
	}
	if view := m.View(); !strings.Contains(view, "Pune → Goa") || !strings.Contains(view, "Sleeper") {
		t.Errorf("View() missing trip header:\n%s", view)
	}
}

func TestBookingBusFailureIsNotFatal(t *testing.T) {
	trip := makeTestTrip()
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/user/trips/t1": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": trip})
		},
	})
	m := newBookingModel(newTestEnv(c), c, "t1")
	m, _ = drive(t, m, bookingModel.Update, m.loadTrip()())

	if m.err != nil || m.trip == nil {
		t.Fatalf("trip load failed: %v", m.err)
	}
	if m.bus != nil {
		t.Errorf("bus = %+v, want nil", m.bus)
	}
}

func TestBookingResultForAnotherTripIsIgnored(t *testing.T) {
	m := newLoadedBookingModel(t, nil, makeTestTrip())
	m, _ = m.Update(keyMsg("space"))
	m.submitting = true

	m, cmd := m.Update(bookingDoneMsg{tripID: "t0", seats: []int{1}, booking: &domain.Booking{ID: "b0"}})
	if cmd != nil {
		t.Error("result for another trip produced a command")
	}
	if m.seats.State(1) == domain.SeatBooked {
		t.Error("seat 1 marked booked by another trip's result")
	}
	if !m.submitting {
		t.Error("submitting cleared by another trip's result")
	}
}

func TestAppStaleBookingResultWhileTripLoads(t *testing.T) {
	a := newTestApp(nil)
	a.booking = newBookingModel(a.env, nil, "tripB")
	a.view = viewBooking

	model, _ := a.Update(bookingDoneMsg{tripID: "tripA", seats: []int{1}})
	a = model.(App)
	if a.booking.seats != nil {
		t.Error("seat map built from a stale result")
	}

	// Same trip id but the seat map is not loaded yet.
	model, _ = a.Update(bookingDoneMsg{tripID: "tripB", seats: []int{1}})
	a = model.(App)
	if a.booking.seats != nil {
		t.Error("seat map built before the trip loaded")
	}
}
