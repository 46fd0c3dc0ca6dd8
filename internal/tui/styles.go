package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/busline/pkg/domain"
)

// Shimmer animation for the BUSLINE logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "BUSLINE" as a wave of amber light moving
// left to right. Deep amber (#5a3a0a) -> signal yellow (#facc15).
func renderShimmerLogo(frame int) string {
	const text = "BUSLINE"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep:   (90, 58, 10)   #5a3a0a
		// Bright: (250, 204, 21) #facc15
		r := clampByte(90 + b*(250-90))
		g := clampByte(58 + b*(204-58))
		bl := clampByte(10 + b*(21-10))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15")).
			Bold(true)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5a3a0a")).
			Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#facc15")).
			Padding(0, 1)

	// Seat grid
	seatAvailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0c4d0"))

	seatSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#111118")).
				Background(lipgloss.Color("#4ade80")).
				Bold(true)

	seatBookedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#404858")).
			Strikethrough(true)

	seatCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15")).
			Bold(true)

	// Form
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0")).
			Width(18)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#facc15")).
				Bold(true).
				Width(18)
)

// statusStyles maps booking and payment statuses to colors.
var statusStyles = map[string]lipgloss.Style{
	domain.BookingConfirmed: successStyle,
	domain.BookingCancelled: errorStyle,
	domain.PaymentPaid:      successStyle,
	domain.PaymentRefunded:  warnStyle,
	domain.PaymentPending:   accentStyle,
}

// StatusStyle returns the style for a booking or payment status.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return dimStyle
}

// seatStyle returns the grid style for a seat state.
func seatStyle(state domain.SeatState) lipgloss.Style {
	switch state {
	case domain.SeatSelected:
		return seatSelectedStyle
	case domain.SeatBooked:
		return seatBookedStyle
	default:
		return seatAvailableStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries into one line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// centered pads s so it sits in the middle of width columns.
func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
