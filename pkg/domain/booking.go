package domain

import "time"

// Booking statuses reported by the API.
const (
	BookingConfirmed = "Confirmed"
	BookingCancelled = "Cancelled"
)

// Payment statuses reported by the API.
const (
	PaymentPaid     = "Paid"
	PaymentRefunded = "Refunded"
	PaymentPending  = "Pending"
)

// Booking is a user's purchase record against one trip.
type Booking struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"userId,omitempty"`
	TripID         string    `json:"tripId,omitempty"`
	SeatsBooked    []int     `json:"seatsBooked"`
	SeatsCancelled []int     `json:"seatsCancelled"`
	TotalPrice     float64   `json:"totalPrice"`
	PaymentStatus  string    `json:"paymentStatus"`
	BookingStatus  string    `json:"bookingStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Cancelled reports whether the whole booking has been cancelled.
func (b Booking) Cancelled() bool {
	return b.BookingStatus == BookingCancelled
}

// ActionableSeats returns the seats that can still be cancelled.
// A cancelled booking has none.
func (b Booking) ActionableSeats() []int {
	if b.Cancelled() || len(b.SeatsBooked) == 0 {
		return nil
	}
	return b.SeatsBooked
}
