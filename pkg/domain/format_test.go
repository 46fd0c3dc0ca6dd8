package domain

import "testing"

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "₹0"},
		{600, "₹600"},
		{1200, "₹1,200"},
		{100000, "₹100,000"},
		{1249.5, "₹1,249.5"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.v); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatSeats(t *testing.T) {
	if got := FormatSeats([]int{2, 8}); got != "2, 8" {
		t.Errorf("FormatSeats([2 8]) = %q", got)
	}
	if got := FormatSeats(nil); got != "-" {
		t.Errorf("FormatSeats(nil) = %q, want -", got)
	}
}
