package domain

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol prefixes displayed prices.
const CurrencySymbol = "₹"

// FormatPrice renders an amount with thousands separators, e.g. ₹1,200.
func FormatPrice(v float64) string {
	return CurrencySymbol + humanize.Commaf(v)
}

// FormatSeats renders a seat list as "2, 8", or "-" when empty.
func FormatSeats(seats []int) string {
	if len(seats) == 0 {
		return "-"
	}
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}
