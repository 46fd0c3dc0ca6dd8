package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/naveenspark/busline/pkg/domain"
)

// Price bounds sent when the user leaves the filters blank.
const (
	DefaultMinPrice = "0"
	DefaultMaxPrice = "100000"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 10 {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	return v
}

// ValidationError lists the fields of a request that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid " + strings.Join(e.Fields, ", ")
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldLabel(fe.Field()))
	}
	return &ValidationError{Fields: fields}
}

func fieldLabel(field string) string {
	switch field {
	case "LastName":
		return "last name"
	case "CompanyName":
		return "company name"
	default:
		return strings.ToLower(field)
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the request before it is sent.
func (r LoginRequest) Validate() error { return validateStruct(r) }

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
	Message string      `json:"-"`
}

// RegisterRequest is the body of POST /auth/register.
// CompanyName is only required for operators.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,phone10"`
	CompanyName string `json:"companyName,omitempty" validate:"required_if=Role operator"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=user operator"`
}

// Validate checks the request before it is sent.
func (r RegisterRequest) Validate() error { return validateStruct(r) }

// TripQuery holds the search filters and paging of GET /user/trips.
// Dates are YYYY-MM-DD; empty price bounds fall back to the defaults.
type TripQuery struct {
	From      string
	To        string
	StartDate string
	EndDate   string
	MinPrice  string
	MaxPrice  string
	Page      int
	Limit     int
}

// CreateBookingRequest is the body of POST /user/bookings/:tripId.
// Seats is the number of seats in SeatNumbers.
type CreateBookingRequest struct {
	TripID      string  `json:"tripId"`
	SeatNumbers []int   `json:"seatNumbers"`
	Seats       int     `json:"seats"`
	TotalAmount float64 `json:"totalAmount"`
}

// NewCreateBookingRequest builds a booking request for the given seats.
func NewCreateBookingRequest(tripID string, seats []int, total float64) CreateBookingRequest {
	return CreateBookingRequest{
		TripID:      tripID,
		SeatNumbers: seats,
		Seats:       len(seats),
		TotalAmount: total,
	}
}

type cancelSeatsRequest struct {
	SeatNumbers []int `json:"seatNumbers"`
}

// CancellationResult is the body of a cancel response.
type CancellationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
