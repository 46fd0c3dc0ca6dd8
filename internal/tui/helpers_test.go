package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Pune", 10, "Pune"},
		{"Bengaluru", 5, "Beng…"},
		{"₹1,000", 3, "₹1…"},
		{"x", 0, ""},
	}
	for _, tc := range tests {
		if got := truncStr(tc.in, tc.max); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight() = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abc…" {
		t.Errorf("padRight() = %q", got)
	}
}

func TestFormatZeroTimes(t *testing.T) {
	if got := formatClock(time.Time{}); got != "--:--" {
		t.Errorf("formatClock(zero) = %q", got)
	}
	if got := formatDate(time.Time{}); got != "-" {
		t.Errorf("formatDate(zero) = %q", got)
	}
	if got := relTime(time.Time{}); got != "" {
		t.Errorf("relTime(zero) = %q", got)
	}
	if got := relTime(time.Now().Add(-72 * time.Hour)); !strings.Contains(got, "ago") {
		t.Errorf("relTime() = %q, want relative past", got)
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Errorf("truncateToHeight() = %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("truncateToHeight(0) = %q", got)
	}
}

func TestFocusOnly(t *testing.T) {
	inputs := []textinput.Model{newInput("a", 5), newInput("b", 5), newPasswordInput("c", 5)}
	focusOnly(inputs, 1)
	for i, in := range inputs {
		if in.Focused() != (i == 1) {
			t.Errorf("input %d Focused() = %v", i, in.Focused())
		}
	}
	focusOnly(inputs, -1)
	for i, in := range inputs {
		if in.Focused() {
			t.Errorf("input %d still focused", i)
		}
	}
}
