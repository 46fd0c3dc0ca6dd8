package domain

import (
	"errors"
	"slices"
)

// SeatsPerRow is the seat grid width. The aisle sits after AisleAfter seats.
const (
	SeatsPerRow = 4
	AisleAfter  = 2
)

// ErrSeatBooked is returned when toggling a seat that is no longer purchasable.
var ErrSeatBooked = errors.New("seat already booked")

// ErrUnknownSeat is returned when toggling a seat that is not on the trip.
var ErrUnknownSeat = errors.New("seat not on this trip")

// SeatState is how a seat renders on the grid.
type SeatState int

const (
	SeatAvailable SeatState = iota
	SeatSelected
	SeatBooked
)

// SeatMap is the transient selection state of one booking screen.
type SeatMap struct {
	unitPrice float64
	total     []int
	booked    map[int]bool
	selected  []int // selection order
}

// NewSeatMap builds the seat map for a trip.
func NewSeatMap(t Trip) *SeatMap {
	m := &SeatMap{
		unitPrice: t.Price,
		total:     slices.Clone(t.TotalSeats),
		booked:    make(map[int]bool),
	}
	for _, seat := range t.BookedSeats() {
		m.booked[seat] = true
	}
	return m
}

// Seats returns every seat of the trip in grid order.
func (m *SeatMap) Seats() []int {
	return m.total
}

// State returns the render state of seat.
func (m *SeatMap) State(seat int) SeatState {
	switch {
	case m.booked[seat]:
		return SeatBooked
	case slices.Contains(m.selected, seat):
		return SeatSelected
	default:
		return SeatAvailable
	}
}

// Toggle adds seat to the selection or removes it. Booked seats are rejected.
func (m *SeatMap) Toggle(seat int) error {
	if !slices.Contains(m.total, seat) {
		return ErrUnknownSeat
	}
	if m.booked[seat] {
		return ErrSeatBooked
	}
	if i := slices.Index(m.selected, seat); i >= 0 {
		m.selected = slices.Delete(m.selected, i, i+1)
		return nil
	}
	m.selected = append(m.selected, seat)
	return nil
}

// Selected returns the selected seats in the order they were chosen.
func (m *SeatMap) Selected() []int {
	return slices.Clone(m.selected)
}

// Count is the number of selected seats.
func (m *SeatMap) Count() int {
	return len(m.selected)
}

// UnitPrice is the per-seat price.
func (m *SeatMap) UnitPrice() float64 {
	return m.unitPrice
}

// Total is the running price of the selection.
func (m *SeatMap) Total() float64 {
	return m.unitPrice * float64(len(m.selected))
}

// ClearSelection empties the selection.
func (m *SeatMap) ClearSelection() {
	m.selected = nil
}

// MarkBooked records seats as booked locally and drops them from the selection.
func (m *SeatMap) MarkBooked(seats []int) {
	for _, seat := range seats {
		m.booked[seat] = true
	}
	m.selected = slices.DeleteFunc(m.selected, func(s int) bool { return m.booked[s] })
}

// BookedCount is the number of seats that can no longer be purchased.
func (m *SeatMap) BookedCount() int {
	return len(m.booked)
}

// Rows groups the seats into rows of SeatsPerRow; the last row may be short.
func (m *SeatMap) Rows() [][]int {
	return SeatRows(m.total, SeatsPerRow)
}

// SeatRows splits seats into rows of width perRow.
func SeatRows(seats []int, perRow int) [][]int {
	if perRow <= 0 {
		return nil
	}
	rows := make([][]int, 0, (len(seats)+perRow-1)/perRow)
	for start := 0; start < len(seats); start += perRow {
		end := min(start+perRow, len(seats))
		rows = append(rows, seats[start:end])
	}
	return rows
}
