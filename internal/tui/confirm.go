package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// confirm is an inline y/n prompt guarding a destructive or costly action.
type confirm struct {
	prompt string
	onYes  tea.Cmd
}

func askConfirm(prompt string, onYes tea.Cmd) confirm {
	return confirm{prompt: prompt, onYes: onYes}
}

func (c confirm) active() bool {
	return c.prompt != ""
}

// handle consumes a key while the prompt is open. It returns the updated
// prompt and, on "y", the guarded command.
func (c confirm) handle(msg tea.KeyMsg) (confirm, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		cmd := c.onYes
		return confirm{}, cmd
	case "n", "N", "esc":
		return confirm{}, nil
	}
	return c, nil
}

func (c confirm) View() string {
	if !c.active() {
		return ""
	}
	return confirmStyle.Render(c.prompt+"  ") + " " + helpEntry("y", "yes") + "  " + helpEntry("n", "no")
}
