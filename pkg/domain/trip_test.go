package domain

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func TestBookedSeats(t *testing.T) {
	tests := []struct {
		name  string
		total []int
		open  []int
		want  []int
	}{
		{"none booked", []int{1, 2, 3}, []int{1, 2, 3}, []int{}},
		{"some booked", []int{1, 2, 3, 4}, []int{1, 3}, []int{2, 4}},
		{"all booked", []int{1, 2}, nil, []int{1, 2}},
		{"no seats", nil, nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BookedSeats(tt.total, tt.open)
			if !slices.Equal(got, tt.want) {
				t.Errorf("BookedSeats(%v, %v) = %v, want %v", tt.total, tt.open, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0h 0m"},
		{90 * time.Minute, "1h 30m"},
		{5*time.Hour + 59*time.Minute + 59*time.Second, "5h 59m"},
		{26 * time.Hour, "26h 0m"},
		{-time.Hour, "0h 0m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTripExpiredAndUnavailable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trip := Trip{
		DepartureTime: now.Add(-3 * time.Hour),
		ArrivalTime:   now.Add(-time.Minute),
		TotalSeats:    []int{1, 2},
	}
	if !trip.Expired(now) {
		t.Error("expected trip that arrived a minute ago to be expired")
	}
	if !trip.Unavailable() {
		t.Error("expected trip without open seats to be unavailable")
	}

	trip.ArrivalTime = now.Add(time.Hour)
	trip.SeatNumbers = []int{2}
	if trip.Expired(now) {
		t.Error("expected upcoming trip not to be expired")
	}
	if trip.Unavailable() {
		t.Error("expected trip with an open seat to be available")
	}
}

func TestTripDecodesPopulatedRefs(t *testing.T) {
	raw := `{
		"_id": "t1",
		"source": "Pune",
		"destination": "Goa",
		"departureTime": "2026-03-01T08:00:00.000Z",
		"arrivalTime": "2026-03-01T17:30:00.000Z",
		"price": 600,
		"availableSeats": 2,
		"busId": {"_id": "b1", "busNumber": "MH12 AB 1234"},
		"operatorId": {"_id": "o1", "name": "Konkan Travels", "email": "ops@konkan.test"}
	}`
	var trip Trip
	if err := json.Unmarshal([]byte(raw), &trip); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if trip.Bus.BusNumber != "MH12 AB 1234" {
		t.Errorf("Bus.BusNumber = %q, want %q", trip.Bus.BusNumber, "MH12 AB 1234")
	}
	if trip.Operator.Name != "Konkan Travels" {
		t.Errorf("Operator.Name = %q, want %q", trip.Operator.Name, "Konkan Travels")
	}
	if got := FormatDuration(trip.Duration()); got != "9h 30m" {
		t.Errorf("duration = %q, want %q", got, "9h 30m")
	}
}

func TestTripDecodesBareRefs(t *testing.T) {
	raw := `{"_id": "t1", "busId": "b42", "operatorId": "o7", "totalSeats": [1,2,3], "seatNumbers": [3]}`
	var trip Trip
	if err := json.Unmarshal([]byte(raw), &trip); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if trip.Bus.ID != "b42" {
		t.Errorf("Bus.ID = %q, want %q", trip.Bus.ID, "b42")
	}
	if trip.Operator.ID != "o7" {
		t.Errorf("Operator.ID = %q, want %q", trip.Operator.ID, "o7")
	}
	if got := trip.BookedSeats(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("BookedSeats() = %v, want [1 2]", got)
	}
}

func TestTripDecodesNullRef(t *testing.T) {
	var trip Trip
	if err := json.Unmarshal([]byte(`{"_id": "t1", "busId": null}`), &trip); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if trip.Bus.ID != "" {
		t.Errorf("Bus.ID = %q, want empty", trip.Bus.ID)
	}
}
