package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

const (
	msgRegisterSuccess = "Registration successful. Please log in."
	msgRegisterFailed  = "Unknown error occurred."
)

const (
	regName = iota
	regLastName
	regEmail
	regPhone
	regCompany
	regPassword
	regConfirm
	numRegInputs

	// regRole is the focus index of the role selector.
	regRole      = numRegInputs
	numRegFields = numRegInputs + 1
)

var regLabels = [numRegFields]string{
	"First name", "Last name", "Email", "Phone", "Company", "Password", "Confirm password", "Role",
}

type registerModel struct {
	env        *env
	client     *client.Client
	inputs     []textinput.Model
	role       string
	focus      int
	match      string
	status     string
	submitting bool
	spinner    spinner.Model
	width      int
}

type registerDoneMsg struct {
	message string
	err     error
}

func newRegisterModel(e *env, c *client.Client) registerModel {
	inputs := make([]textinput.Model, numRegInputs)
	inputs[regName] = newInput("Jane", 24)
	inputs[regLastName] = newInput("Doe", 24)
	inputs[regEmail] = newInput("you@example.com", 32)
	inputs[regPhone] = newInput("10 digits", 12)
	inputs[regPhone].CharLimit = 10
	inputs[regCompany] = newInput("Operator company", 32)
	inputs[regPassword] = newPasswordInput("password", 32)
	inputs[regConfirm] = newPasswordInput("repeat password", 32)
	focusOnly(inputs, regName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return registerModel{
		env:     e,
		client:  c,
		inputs:  inputs,
		role:    domain.RoleUser,
		spinner: sp,
	}
}

func (m registerModel) Init() tea.Cmd {
	return textinput.Blink
}

// visible reports whether field i is part of the form for the current role.
func (m registerModel) visible(i int) bool {
	return i != regCompany || m.role == domain.RoleOperator
}

func (m *registerModel) moveFocus(delta int) {
	for {
		m.focus = (m.focus + delta + numRegFields) % numRegFields
		if m.visible(m.focus) {
			break
		}
	}
	focusOnly(m.inputs, m.focus)
}

func (m *registerModel) cycleRole(delta int) {
	i := slices.Index(domain.Roles, m.role)
	m.role = domain.Roles[(i+delta+len(domain.Roles))%len(domain.Roles)]
}

func (m registerModel) request() client.RegisterRequest {
	val := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	req := client.RegisterRequest{
		Name:     val(regName),
		LastName: val(regLastName),
		Email:    val(regEmail),
		Phone:    val(regPhone),
		Password: m.inputs[regPassword].Value(),
		Role:     m.role,
	}
	if m.role == domain.RoleOperator {
		req.CompanyName = val(regCompany)
	}
	return req
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	if m.match != domain.PasswordsMatch {
		m.status = domain.PasswordsMismatch
		if m.inputs[regConfirm].Value() == "" {
			m.status = "Please confirm your password"
		}
		return m, nil
	}
	req := m.request()
	if err := req.Validate(); err != nil {
		var verr *client.ValidationError
		if errors.As(err, &verr) {
			m.status = "Please check: " + strings.Join(verr.Fields, ", ")
		} else {
			m.status = err.Error()
		}
		return m, nil
	}
	m.status = ""
	m.submitting = true
	c := m.client
	register := func() tea.Msg {
		message, err := c.Register(context.Background(), req)
		return registerDoneMsg{message: message, err: err}
	}
	return m, tea.Batch(register, m.spinner.Tick)
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case registerDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.env.logger.Warn("registration failed", "error", msg.err)
			return m, showToast(client.ErrorMessage(msg.err, msgRegisterFailed), toastError)
		}
		m.env.logger.Info("registration succeeded", "role", m.role)
		return m, tea.Batch(
			showToast(orDefault(msg.message, msgRegisterSuccess), toastSuccess),
			navigate(viewLogin),
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
		case "esc":
			return m, navigate(viewLogin)
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus == regRole {
				return m.submit()
			}
			m.moveFocus(1)
			return m, nil
		}
		if m.focus == regRole {
			switch msg.String() {
			case "h", "left":
				m.cycleRole(-1)
			case "l", "right", " ":
				m.cycleRole(1)
			}
			return m, nil
		}
	}

	if m.focus == regRole {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.focus == regPassword || m.focus == regConfirm {
		m.match = domain.PasswordMatch(m.inputs[regPassword].Value(), m.inputs[regConfirm].Value())
	}
	return m, cmd
}

func (m registerModel) helpKeys() string {
	if m.focus == regRole {
		return helpBar("h/l", "role", "enter", "register", "tab", "next", "esc", "back")
	}
	return helpBar("tab", "next", "ctrl+s", "register", "esc", "back", "ctrl+c", "quit")
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Create Account") + "\n\n")
	for i := range numRegInputs {
		if !m.visible(i) {
			continue
		}
		fmt.Fprintf(&b, "  %s %s", m.label(i), m.inputs[i].View())
		if i == regConfirm {
			switch m.match {
			case domain.PasswordsMatch:
				b.WriteString("  " + successStyle.Render(m.match))
			case domain.PasswordsMismatch:
				b.WriteString("  " + errorStyle.Render(m.match))
			}
		}
		b.WriteString("\n")
	}

	var roles []string
	for _, r := range domain.Roles {
		if r == m.role {
			roles = append(roles, accentStyle.Render("● "+r))
		} else {
			roles = append(roles, dimStyle.Render("○ "+r))
		}
	}
	fmt.Fprintf(&b, "  %s %s\n\n", m.label(regRole), strings.Join(roles, "  "))

	switch {
	case m.submitting:
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Creating account...") + "\n")
	case m.status != "":
		b.WriteString("  " + errorStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m registerModel) label(i int) string {
	if i == m.focus {
		return focusedLabelStyle.Render(regLabels[i])
	}
	return labelStyle.Render(regLabels[i])
}
