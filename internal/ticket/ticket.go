// Package ticket renders bookings as printable PDF tickets.
package ticket

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/phpdave11/gofpdf"

	"github.com/naveenspark/busline/pkg/domain"
)

// The core PDF fonts have no rupee glyph.
const pdfCurrency = "Rs. "

// FileName returns the file name a booking's ticket is saved under.
func FileName(b domain.Booking) string {
	return "ticket_" + safeName(b.ID) + ".pdf"
}

// Render writes a one-page PDF ticket for b to w.
func Render(w io.Writer, b domain.Booking) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Booking Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	booked := "-"
	if !b.CreatedAt.IsZero() {
		booked = b.CreatedAt.Local().Format("02 Jan 2006 15:04")
	}
	rows := [][2]string{
		{"Booking ID", b.ID},
		{"Seats", domain.FormatSeats(b.SeatsBooked) + " / " + domain.FormatSeats(b.SeatsCancelled)},
		{"Total Price", pdfCurrency + humanize.Commaf(b.TotalPrice)},
		{"Status", orDash(b.BookingStatus)},
		{"Payment", orDash(b.PaymentStatus)},
		{"Booked On", booked},
	}

	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(45, 8, r[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, r[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 11)
	pdf.MultiCell(0, 6, "Thank you for booking with us!", "", "C", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("ticket.Render: %w", err)
	}
	return nil
}

// Save renders b into dir and returns the written path.
func Save(dir string, b domain.Booking) (string, error) {
	if b.ID == "" {
		return "", fmt.Errorf("ticket.Save: booking has no id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ticket.Save: %w", err)
	}
	path := filepath.Join(dir, FileName(b))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ticket.Save: %w", err)
	}
	if err := Render(f, b); err != nil {
		f.Close()       //nolint:errcheck
		os.Remove(path) //nolint:errcheck
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ticket.Save: %w", err)
	}
	return path, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
