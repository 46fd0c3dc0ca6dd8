package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

// Login outcome notices.
const (
	msgLoginSuccess    = "Login successful"
	msgUserNotFound    = "User not Found"
	msgUnexpectedError = "An unexpected error occurred"
)

const (
	loginEmail = iota
	loginPassword
	numLoginFields
)

var loginLabels = [numLoginFields]string{"Email", "Password"}

type loginModel struct {
	env        *env
	client     *client.Client
	inputs     []textinput.Model
	focus      int
	status     string
	submitting bool
	spinner    spinner.Model
	width      int
}

type loginDoneMsg struct {
	message string
	err     error
}

// errSessionSave marks a login that succeeded remotely but could not be stored.
var errSessionSave = errors.New("session not saved")

func newLoginModel(e *env, c *client.Client) loginModel {
	inputs := make([]textinput.Model, numLoginFields)
	inputs[loginEmail] = newInput("you@example.com", 32)
	inputs[loginPassword] = newPasswordInput("password", 32)
	focusOnly(inputs, loginEmail)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return loginModel{env: e, client: c, inputs: inputs, spinner: sp}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) request() client.LoginRequest {
	return client.LoginRequest{
		Email:    strings.TrimSpace(m.inputs[loginEmail].Value()),
		Password: m.inputs[loginPassword].Value(),
	}
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	req := m.request()
	if err := req.Validate(); err != nil {
		var verr *client.ValidationError
		if errors.As(err, &verr) {
			m.status = "Please fill in: " + strings.Join(verr.Fields, ", ")
		} else {
			m.status = err.Error()
		}
		return m, nil
	}
	m.status = ""
	m.submitting = true

	c := m.client
	mgr := m.env.manager()
	logger := m.env.logger
	login := func() tea.Msg {
		ctx := context.Background()
		res, err := c.Login(ctx, req)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		role := res.User.Role
		if role == "" {
			role = domain.RoleUser
		}
		if _, err := mgr.Start(ctx, res.Token, role); err != nil {
			logger.Error("store session failed", "error", err)
			return loginDoneMsg{err: fmt.Errorf("%w: %v", errSessionSave, err)}
		}
		return loginDoneMsg{message: res.Message}
	}
	return m, tea.Batch(login, m.spinner.Tick)
}

// loginFailure maps a login error to the notice shown to the user.
func loginFailure(err error) string {
	if errors.Is(err, client.ErrUnexpectedResponse) || errors.Is(err, errSessionSave) {
		return msgUnexpectedError
	}
	return msgUserNotFound
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.env.logger.Warn("login failed", "error", msg.err)
			m.inputs[loginPassword].SetValue("")
			return m, showToast(loginFailure(msg.err), toastError)
		}
		m.env.logger.Info("login succeeded")
		return m, tea.Batch(
			showToast(orDefault(msg.message, msgLoginSuccess), toastSuccess),
			navigate(viewSearch),
		)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+n":
			return m, navigate(viewRegister)
		case "tab", "down":
			m.focus = (m.focus + 1) % numLoginFields
			focusOnly(m.inputs, m.focus)
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
			focusOnly(m.inputs, m.focus)
			return m, nil
		case "enter":
			if m.focus < numLoginFields-1 {
				m.focus++
				focusOnly(m.inputs, m.focus)
				return m, nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) helpKeys() string {
	return helpBar("tab", "next", "enter", "log in", "ctrl+n", "register", "ctrl+c", "quit")
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Log In") + "\n\n")
	for i := range numLoginFields {
		label := labelStyle.Render(loginLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(loginLabels[i])
		}
		fmt.Fprintf(&b, "  %s %s\n", label, m.inputs[i].View())
	}
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Logging in...") + "\n")
	case m.status != "":
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	}
	b.WriteString("  " + metaStyle.Render("No account? Press ctrl+n to register.") + "\n")
	return b.String()
}
