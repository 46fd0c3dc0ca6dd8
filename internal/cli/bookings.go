package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/naveenspark/busline/internal/browser"
	"github.com/naveenspark/busline/internal/ticket"
	"github.com/naveenspark/busline/pkg/domain"
)

const (
	msgNoBookings      = "You have no bookings yet."
	msgAlreadyCanceled = "Booking is already cancelled"
	msgCancelSeatOK    = "Seat %d cancelled"
	msgCancelAllOK     = "Booking cancelled"
	msgCancelSeatFail  = "Failed to cancel seat. Please try again."
	msgCancelAllFail   = "Failed to cancel booking. Please try again."
)

func newBookingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authorize(cmd.Context())
			if err != nil {
				return err
			}
			bookings, err := c.ListBookings(cmd.Context())
			if err != nil {
				return a.apiFailure(cmd.Context(), "fetch bookings", err)
			}
			printBookings(cmd.OutOrStdout(), bookings)
			return nil
		},
	}
}

func printBookings(w io.Writer, bookings []domain.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, msgNoBookings)
		return
	}
	slices.SortStableFunc(bookings, func(x, y domain.Booking) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	fmt.Fprintf(w, "%-26s %-16s %-12s %-10s %-9s %10s  %s\n", "ID", "SEATS", "CANCELLED", "STATUS", "PAYMENT", "TOTAL", "BOOKED")
	for _, b := range bookings {
		fmt.Fprintf(w, "%-26s %-16s %-12s %-10s %-9s %10s  %s\n",
			b.ID,
			truncate(domain.FormatSeats(b.SeatsBooked), 16),
			truncate(domain.FormatSeats(b.SeatsCancelled), 12),
			b.BookingStatus,
			b.PaymentStatus,
			domain.FormatPrice(b.TotalPrice),
			humanize.Time(b.CreatedAt),
		)
	}
}

func printBooking(w io.Writer, b *domain.Booking) {
	fmt.Fprintf(w, "Booking %s\n", b.ID)
	if b.TripID != "" {
		fmt.Fprintf(w, "  Trip:      %s\n", b.TripID)
	}
	fmt.Fprintf(w, "  Seats:     %s\n", domain.FormatSeats(b.SeatsBooked))
	fmt.Fprintf(w, "  Cancelled: %s\n", domain.FormatSeats(b.SeatsCancelled))
	fmt.Fprintf(w, "  Total:     %s\n", domain.FormatPrice(b.TotalPrice))
	fmt.Fprintf(w, "  Status:    %s\n", b.BookingStatus)
	fmt.Fprintf(w, "  Payment:   %s\n", b.PaymentStatus)
	if !b.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Booked:    %s\n", b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func newBookingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "booking <id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authorize(cmd.Context())
			if err != nil {
				return err
			}
			b, err := c.GetBooking(cmd.Context(), args[0])
			if err != nil {
				return a.apiFailure(cmd.Context(), "fetch booking", err)
			}
			printBooking(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	var (
		seat int
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a whole booking or one seat of it",
		Args:  cobra.ExactArgs(1),
		Example: `  busline cancel 66a0b1 --seat 4
  busline cancel 66a0b1 --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authorize(ctx)
			if err != nil {
				return err
			}
			id := args[0]
			b, err := c.GetBooking(ctx, id)
			if err != nil {
				return a.apiFailure(ctx, "fetch booking", err)
			}
			if b.Cancelled() {
				return errors.New(msgAlreadyCanceled)
			}
			if seat != 0 && !slices.Contains(b.ActionableSeats(), seat) {
				return fmt.Errorf("seat %d is not active on booking %s", seat, id)
			}

			question := "Are you sure you want to cancel the entire booking? This cannot be undone."
			if seat != 0 {
				question = fmt.Sprintf("Are you sure you want to cancel seat %d?", seat)
			}
			out := cmd.OutOrStdout()
			if !yes {
				ok, err := a.confirm(cmd, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			var (
				msg     string
				failMsg string
			)
			if seat != 0 {
				res, cerr := c.CancelSeat(ctx, id, seat)
				err, failMsg = cerr, msgCancelSeatFail
				if cerr == nil {
					msg = orDefault(res.Message, fmt.Sprintf(msgCancelSeatOK, seat))
				}
			} else {
				res, cerr := c.CancelBooking(ctx, id)
				err, failMsg = cerr, msgCancelAllFail
				if cerr == nil {
					msg = orDefault(res.Message, msgCancelAllOK)
				}
			}
			if err != nil {
				a.logger.Warn("cancel failed", "booking_id", id, "seat", seat, "error", err)
			} else {
				fmt.Fprintln(out, msg)
			}

			// Show the server's view of the booking whether or not the cancel went through.
			if fresh, ferr := c.GetBooking(ctx, id); ferr != nil {
				a.logger.Warn("refetch booking failed", "booking_id", id, "error", ferr)
			} else {
				printBooking(out, fresh)
			}
			if err != nil {
				return errors.New(failMsg)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seat, "seat", 0, "Cancel only this seat")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newTicketCmd(a *app) *cobra.Command {
	var (
		dir  string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "ticket <booking-id>",
		Short: "Download a booking's PDF ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authorize(cmd.Context())
			if err != nil {
				return err
			}
			b, err := c.GetBooking(cmd.Context(), args[0])
			if err != nil {
				return a.apiFailure(cmd.Context(), "fetch booking", err)
			}
			if dir == "" {
				dir = a.cfg.Tickets.Dir
			}
			path, err := ticket.Save(dir, *b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ticket saved to %s\n", path)
			if open || (a.cfg.Tickets.Open && !cmd.Flags().Changed("open")) {
				if err := browser.OpenFile(path); err != nil {
					a.logger.Warn("open ticket failed", "path", path, "error", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the PDF after saving")
	return cmd
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
