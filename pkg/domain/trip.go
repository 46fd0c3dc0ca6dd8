package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Trip is a scheduled bus journey offered for booking.
type Trip struct {
	ID             string      `json:"_id"`
	Source         string      `json:"source"`
	Destination    string      `json:"destination"`
	DepartureTime  time.Time   `json:"departureTime"`
	ArrivalTime    time.Time   `json:"arrivalTime"`
	Price          float64     `json:"price"`
	AvailableSeats int         `json:"availableSeats"`
	TotalSeats     []int       `json:"totalSeats,omitempty"`
	SeatNumbers    []int       `json:"seatNumbers,omitempty"` // still purchasable
	Bus            BusRef      `json:"busId"`
	Operator       OperatorRef `json:"operatorId"`
	Status         string      `json:"status,omitempty"` // "Scheduled", "Cancelled", "Completed"
}

// Bus is the vehicle assigned to a trip.
type Bus struct {
	ID         string `json:"_id"`
	BusNumber  string `json:"busNumber"`
	BusType    string `json:"busType,omitempty"`
	TotalSeats int    `json:"totalSeats,omitempty"`
}

// BusRef is a trip's bus reference. The API sends either a populated
// object or the bare id string depending on the endpoint.
type BusRef struct {
	ID        string `json:"_id"`
	BusNumber string `json:"busNumber,omitempty"`
}

// UnmarshalJSON accepts both the populated and the bare-id forms.
func (r *BusRef) UnmarshalJSON(data []byte) error {
	type plain BusRef
	id, obj, err := refOrObject(data)
	if err != nil {
		return fmt.Errorf("bus ref: %w", err)
	}
	if obj == nil {
		*r = BusRef{ID: id}
		return nil
	}
	var p plain
	if err := json.Unmarshal(obj, &p); err != nil {
		return fmt.Errorf("bus ref: %w", err)
	}
	*r = BusRef(p)
	return nil
}

// OperatorRef is a trip's operator reference, populated or bare like BusRef.
type OperatorRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts both the populated and the bare-id forms.
func (r *OperatorRef) UnmarshalJSON(data []byte) error {
	type plain OperatorRef
	id, obj, err := refOrObject(data)
	if err != nil {
		return fmt.Errorf("operator ref: %w", err)
	}
	if obj == nil {
		*r = OperatorRef{ID: id}
		return nil
	}
	var p plain
	if err := json.Unmarshal(obj, &p); err != nil {
		return fmt.Errorf("operator ref: %w", err)
	}
	*r = OperatorRef(p)
	return nil
}

// refOrObject splits a reference field into its bare id or its raw object.
func refOrObject(data []byte) (string, []byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil, nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return "", nil, err
		}
		return id, nil, nil
	}
	return "", data, nil
}

// Duration is the scheduled travel time.
func (t Trip) Duration() time.Duration {
	return t.ArrivalTime.Sub(t.DepartureTime)
}

// Expired reports whether the trip has already arrived at now.
func (t Trip) Expired(now time.Time) bool {
	return t.ArrivalTime.Before(now)
}

// Unavailable reports whether no seat is left to purchase.
func (t Trip) Unavailable() bool {
	return len(t.SeatNumbers) == 0
}

// BookedSeats returns the seats of the trip that can no longer be purchased.
func (t Trip) BookedSeats() []int {
	return BookedSeats(t.TotalSeats, t.SeatNumbers)
}

// BookedSeats derives the booked seats as total minus open, preserving the
// order of total.
func BookedSeats(total, open []int) []int {
	booked := make([]int, 0, len(total))
	for _, seat := range total {
		if !slices.Contains(open, seat) {
			booked = append(booked, seat)
		}
	}
	return booked
}

// FormatDuration renders d as "Xh Ym", floored to whole minutes.
// Negative durations render as "0h 0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
