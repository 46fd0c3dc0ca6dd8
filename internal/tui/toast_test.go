package tui

import (
	"strings"
	"testing"
)

func TestToastShowAndExpire(t *testing.T) {
	var ts toast
	ts, cmd := ts.show(toastMsg{text: "Booking successful!", kind: toastSuccess})
	if cmd == nil {
		t.Fatal("show() returned no expiry timer")
	}
	first := ts.id
	if !strings.Contains(ts.View(), "Booking successful!") {
		t.Errorf("View() = %q", ts.View())
	}

	ts, _ = ts.show(toastMsg{text: "Booking failed.", kind: toastError})
	ts = ts.expire(toastExpiredMsg{id: first})
	if ts.text != "Booking failed." {
		t.Errorf("stale expiry cleared newer toast, text = %q", ts.text)
	}

	ts = ts.expire(toastExpiredMsg{id: ts.id})
	if ts.text != "" || ts.View() != "" {
		t.Errorf("toast not cleared: %q", ts.View())
	}
}

func TestToastKinds(t *testing.T) {
	tests := []struct {
		kind toastKind
		mark string
	}{
		{toastInfo, "•"},
		{toastSuccess, "✓"},
		{toastError, "✗"},
	}
	for _, tc := range tests {
		ts, _ := toast{}.show(toastMsg{text: "hi", kind: tc.kind})
		if got := ts.View(); !strings.Contains(got, tc.mark) {
			t.Errorf("kind %d View() = %q, want %q", tc.kind, got, tc.mark)
		}
	}
}

func TestShowToastCmd(t *testing.T) {
	msg := showToast("Logged out", toastInfo)()
	tm, ok := msg.(toastMsg)
	if !ok || tm.text != "Logged out" || tm.kind != toastInfo {
		t.Errorf("showToast() = %#v", msg)
	}
}
