package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "02 Jan 15:04"
	msgNoTrips     = "No trips found. Try adjusting your search criteria."
	msgTripClosed  = "This trip has already completed and can no longer be booked."
	msgTripFull    = "All seats on this trip are booked."
	msgBookSuccess = "Booking successful!"
	msgBookFailed  = "Booking failed."
	msgSelectSeat  = "Select at least one seat"
)

func newSearchCmd(a *app) *cobra.Command {
	var q client.TripQuery

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search trips",
		Example: `  busline search --from Pune --to Goa
  busline search --date 2026-11-02 --max 1500 --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authorize(cmd.Context())
			if err != nil {
				return err
			}
			if q.StartDate == "" {
				q.StartDate = a.manager.Now().Format(dateLayout)
			}
			if err := validateQuery(q); err != nil {
				return err
			}
			if q.Limit == 0 {
				q.Limit = a.cfg.Search.PageSize
			}

			page, err := c.SearchTrips(cmd.Context(), q)
			if err != nil {
				return a.apiFailure(cmd.Context(), "search trips", err)
			}
			printTrips(cmd.OutOrStdout(), page)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.From, "from", "", "Source city")
	f.StringVar(&q.To, "to", "", "Destination city")
	f.StringVar(&q.StartDate, "date", "", "Earliest departure date, YYYY-MM-DD (default today)")
	f.StringVar(&q.EndDate, "end-date", "", "Latest departure date, YYYY-MM-DD")
	f.StringVar(&q.MinPrice, "min", "", "Minimum price")
	f.StringVar(&q.MaxPrice, "max", "", "Maximum price")
	f.IntVar(&q.Page, "page", 1, "Page number")
	f.IntVar(&q.Limit, "limit", 0, "Trips per page: 5, 10, 20 or 50 (default from config)")
	return cmd
}

func validateQuery(q client.TripQuery) error {
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return errors.New("dates must be YYYY-MM-DD")
		}
	}
	for _, p := range []string{q.MinPrice, q.MaxPrice} {
		if p == "" {
			continue
		}
		if v, err := strconv.ParseFloat(p, 64); err != nil || v < 0 {
			return errors.New("prices must be non-negative numbers")
		}
	}
	if q.Page < 1 {
		return errors.New("page must be at least 1")
	}
	return nil
}

func printTrips(w io.Writer, page *domain.TripPage) {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, msgNoTrips)
		return
	}
	fmt.Fprintf(w, "%-26s %-28s %-13s %-9s %6s %10s\n", "ID", "ROUTE", "DEPARTS", "DURATION", "SEATS", "PRICE")
	for _, t := range page.Data {
		fmt.Fprintf(w, "%-26s %-28s %-13s %-9s %6d %10s\n",
			t.ID,
			truncate(t.Source+" → "+t.Destination, 28),
			t.DepartureTime.Local().Format(timeLayout),
			domain.FormatDuration(t.Duration()),
			t.AvailableSeats,
			domain.FormatPrice(t.Price),
		)
	}
	fmt.Fprintf(w, "\nShowing %d of %d trips (page %d of %d)\n", len(page.Data), page.Total, page.CurrentPage, page.TotalPages)
}

func newTripCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trip <id>",
		Short: "Show a trip and its seat map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authorize(cmd.Context())
			if err != nil {
				return err
			}
			t, err := c.GetTrip(cmd.Context(), args[0])
			if err != nil {
				return a.apiFailure(cmd.Context(), "fetch trip", err)
			}
			bus := t.Bus.BusNumber
			if bus == "" && t.Bus.ID != "" {
				if b, err := c.GetBus(cmd.Context(), t.Bus.ID); err != nil {
					a.logger.Warn("fetch bus failed", "bus_id", t.Bus.ID, "error", err)
				} else {
					bus = b.BusNumber
				}
			}
			printTrip(cmd.OutOrStdout(), t, bus, domain.NewSeatMap(*t), a.manager.Now())
			return nil
		},
	}
}

func printTrip(w io.Writer, t *domain.Trip, bus string, seats *domain.SeatMap, now time.Time) {
	fmt.Fprintf(w, "%s → %s\n", t.Source, t.Destination)
	fmt.Fprintf(w, "  Departs:  %s\n", t.DepartureTime.Local().Format(timeLayout))
	fmt.Fprintf(w, "  Arrives:  %s\n", t.ArrivalTime.Local().Format(timeLayout))
	fmt.Fprintf(w, "  Duration: %s\n", domain.FormatDuration(t.Duration()))
	fmt.Fprintf(w, "  Price:    %s per seat\n", domain.FormatPrice(t.Price))
	if bus != "" {
		fmt.Fprintf(w, "  Bus:      %s\n", bus)
	}
	if t.Operator.Name != "" {
		fmt.Fprintf(w, "  Operator: %s\n", t.Operator.Name)
	}
	switch {
	case t.Expired(now):
		fmt.Fprintf(w, "\n%s\n", msgTripClosed)
	case t.Unavailable():
		fmt.Fprintf(w, "\n%s\n", msgTripFull)
	}
	fmt.Fprintln(w)
	printSeatMap(w, seats)
	fmt.Fprintf(w, "\n%d available, %d booked ([xx] = booked)\n", len(seats.Seats())-seats.BookedCount(), seats.BookedCount())
}

// printSeatMap draws the grid with an aisle after domain.AisleAfter seats.
func printSeatMap(w io.Writer, seats *domain.SeatMap) {
	for _, row := range seats.Rows() {
		var b strings.Builder
		b.WriteString("  ")
		for i, seat := range row {
			if i == domain.AisleAfter {
				b.WriteString("   ")
			}
			switch seats.State(seat) {
			case domain.SeatBooked:
				b.WriteString("[xx]")
			case domain.SeatSelected:
				fmt.Fprintf(&b, "<%2d>", seat)
			default:
				fmt.Fprintf(&b, "[%2d]", seat)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func newBookCmd(a *app) *cobra.Command {
	var (
		seats []int
		yes   bool
	)

	cmd := &cobra.Command{
		Use:     "book <trip-id>",
		Short:   "Book seats on a trip",
		Args:    cobra.ExactArgs(1),
		Example: "  busline book 665f1c2e9a --seats 3,4",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authorize(ctx)
			if err != nil {
				return err
			}
			if len(seats) == 0 {
				return errors.New(msgSelectSeat)
			}
			t, err := c.GetTrip(ctx, args[0])
			if err != nil {
				return a.apiFailure(ctx, "fetch trip", err)
			}
			switch {
			case t.Expired(a.manager.Now()):
				return errors.New(msgTripClosed)
			case t.Unavailable():
				return errors.New(msgTripFull)
			}

			sm := domain.NewSeatMap(*t)
			for _, seat := range seats {
				if sm.State(seat) == domain.SeatSelected {
					continue
				}
				if err := sm.Toggle(seat); err != nil {
					return fmt.Errorf("seat %d: %w", seat, err)
				}
			}

			out := cmd.OutOrStdout()
			printSeatMap(out, sm)
			fmt.Fprintf(out, "\nSeats %s, total %s\n", domain.FormatSeats(sm.Selected()), domain.FormatPrice(sm.Total()))
			if !yes {
				ok, err := a.confirm(cmd, fmt.Sprintf("Book %d seat(s) for %s?", sm.Count(), domain.FormatPrice(sm.Total())))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			b, err := c.CreateBooking(ctx, client.NewCreateBookingRequest(t.ID, sm.Selected(), sm.Total()))
			if err != nil {
				a.logger.Warn("create booking failed", "trip_id", t.ID, "error", err)
				return errors.New(client.ErrorMessage(err, msgBookFailed))
			}
			fmt.Fprintln(out, msgBookSuccess)
			if b != nil && b.ID != "" {
				fmt.Fprintf(out, "Booking %s: seats %s, %s\n", b.ID, domain.FormatSeats(b.SeatsBooked), domain.FormatPrice(b.TotalPrice))
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&seats, "seats", nil, "Comma-separated seat numbers")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
