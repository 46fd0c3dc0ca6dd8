package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naveenspark/busline/internal/tui"
)

// runTUI starts the interactive client. Logs go to a file in the state dir
// while the alternate screen is active.
func (a *app) runTUI(cmd *cobra.Command) error {
	m := tui.NewApp(tui.Options{
		Client:              a.client,
		Guard:               a.guard,
		Logger:              a.logger,
		TicketsDir:          a.cfg.Tickets.Dir,
		OpenTickets:         a.cfg.Tickets.Open,
		RefetchAfterBooking: a.cfg.Booking.RefetchAfterBooking,
		PageSize:            a.cfg.Search.PageSize,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
