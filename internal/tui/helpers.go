package tui

import (
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes, truncating when longer.
func padRight(s string, width int) string {
	s = truncStr(s, width)
	for n := utf8.RuneCountInString(s); n < width; n++ {
		s += " "
	}
	return s
}

// formatClock renders a departure or arrival time.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Local().Format("02 Jan 15:04")
}

// formatDate renders a booking date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006")
}

// relTime renders a timestamp relative to now, e.g. "3 days ago".
func relTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
