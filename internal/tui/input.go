package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 200

// newInput returns a blurred single-line input.
func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = maxInputLen
	ti.Width = width
	return ti
}

// newPasswordInput returns an input that masks what is typed.
func newPasswordInput(placeholder string, width int) textinput.Model {
	ti := newInput(placeholder, width)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

// focusOnly focuses inputs[idx] and blurs the rest.
func focusOnly(inputs []textinput.Model, idx int) {
	for i := range inputs {
		if i == idx {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}
