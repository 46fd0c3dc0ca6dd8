package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 3 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

// toastMsg asks the app to show a transient notification.
type toastMsg struct {
	text string
	kind toastKind
}

// toastExpiredMsg clears the toast with the matching id.
type toastExpiredMsg struct{ id int }

func showToast(text string, kind toastKind) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, kind: kind} }
}

// toast is the single notification slot in the app chrome. A newer toast
// replaces the current one; only the newest expiry clears the slot.
type toast struct {
	id   int
	text string
	kind toastKind
}

func (t toast) show(msg toastMsg) (toast, tea.Cmd) {
	t.id++
	t.text = msg.text
	t.kind = msg.kind
	id := t.id
	return t, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (t toast) expire(msg toastExpiredMsg) toast {
	if msg.id == t.id {
		t.text = ""
	}
	return t
}

func (t toast) View() string {
	if t.text == "" {
		return ""
	}
	switch t.kind {
	case toastSuccess:
		return " " + successStyle.Render("✓ "+t.text)
	case toastError:
		return " " + errorStyle.Render("✗ "+t.text)
	default:
		return " " + accentStyle.Render("• "+t.text)
	}
}
