package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/busline/pkg/client"
	"github.com/naveenspark/busline/pkg/domain"
)

const (
	searchFrom = iota
	searchTo
	searchStart
	searchEnd
	searchMin
	searchMax
	numSearchFields

	// searchResults is the focus index of the result list.
	searchResults = numSearchFields
)

const dateLayout = "2006-01-02"

var searchLabels = [numSearchFields]string{"From", "To", "Start date", "End date", "Min price", "Max price"}

type searchModel struct {
	env     *env
	client  *client.Client
	inputs  []textinput.Model
	focus   int
	limit   int
	page    int
	result  *domain.TripPage
	cursor  int
	loading bool
	spinner spinner.Model
	err     error
	status  string
	width   int
	height  int
}

type tripsLoadedMsg struct {
	page *domain.TripPage
	err  error
}

func newSearchModel(e *env, c *client.Client) searchModel {
	inputs := make([]textinput.Model, numSearchFields)
	inputs[searchFrom] = newInput("Departure city", 24)
	inputs[searchTo] = newInput("Destination city", 24)
	inputs[searchStart] = newInput(dateLayout, 12)
	inputs[searchEnd] = newInput("any", 12)
	inputs[searchMin] = newInput(client.DefaultMinPrice, 10)
	inputs[searchMax] = newInput(client.DefaultMaxPrice, 10)
	inputs[searchStart].SetValue(e.now().Format(dateLayout))
	focusOnly(inputs, searchFrom)

	limit := e.opts.PageSize
	if !slices.Contains(domain.PageSizes, limit) {
		limit = domain.PageSizes[0]
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return searchModel{
		env:     e,
		client:  c,
		inputs:  inputs,
		limit:   limit,
		page:    1,
		spinner: sp,
	}
}

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

// editing reports whether keystrokes belong to a form field.
func (m searchModel) editing() bool {
	return m.focus < searchResults
}

func (m searchModel) query(page int) client.TripQuery {
	return client.TripQuery{
		From:      strings.TrimSpace(m.inputs[searchFrom].Value()),
		To:        strings.TrimSpace(m.inputs[searchTo].Value()),
		StartDate: strings.TrimSpace(m.inputs[searchStart].Value()),
		EndDate:   strings.TrimSpace(m.inputs[searchEnd].Value()),
		MinPrice:  strings.TrimSpace(m.inputs[searchMin].Value()),
		MaxPrice:  strings.TrimSpace(m.inputs[searchMax].Value()),
		Page:      page,
		Limit:     m.limit,
	}
}

func (m searchModel) validate() string {
	for _, idx := range []int{searchStart, searchEnd} {
		v := strings.TrimSpace(m.inputs[idx].Value())
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return "Dates must be YYYY-MM-DD"
		}
	}
	for _, idx := range []int{searchMin, searchMax} {
		v := strings.TrimSpace(m.inputs[idx].Value())
		if v == "" {
			continue
		}
		if n, err := strconv.ParseFloat(v, 64); err != nil || n < 0 {
			return "Prices must be non-negative numbers"
		}
	}
	return ""
}

// fetch issues the search for page.
func (m searchModel) fetch(page int) (searchModel, tea.Cmd) {
	if msg := m.validate(); msg != "" {
		m.status = msg
		return m, nil
	}
	m.status = ""
	m.loading = true
	m.page = page
	q := m.query(page)
	c := m.client
	logger := m.env.logger
	load := func() tea.Msg {
		logger.Debug("search trips", "from", q.From, "to", q.To, "page", q.Page, "limit", q.Limit)
		res, err := c.SearchTrips(context.Background(), q)
		return tripsLoadedMsg{page: res, err: err}
	}
	return m, tea.Batch(load, m.spinner.Tick)
}

func (m searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tripsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.env.logger.Warn("search failed", "error", msg.err)
			m.result = nil
			return m, nil
		}
		m.result = msg.page
		if m.result.CurrentPage > 0 {
			m.page = m.result.CurrentPage
		}
		if m.cursor >= len(m.result.Data) {
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing() {
			return m.updateForm(msg)
		}
		return m.updateResults(msg)
	}

	if m.editing() {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m searchModel) updateForm(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % numSearchFields
		focusOnly(m.inputs, m.focus)
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numSearchFields) % numSearchFields
		focusOnly(m.inputs, m.focus)
		return m, nil
	case "esc":
		m.focus = searchResults
		focusOnly(m.inputs, -1)
		return m, nil
	case "enter":
		m.focus = searchResults
		focusOnly(m.inputs, -1)
		m.cursor = 0
		return m.fetch(1)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m searchModel) updateResults(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	var trips []domain.Trip
	if m.result != nil {
		trips = m.result.Data
	}

	switch msg.String() {
	case "/", "tab", "e":
		m.focus = searchFrom
		focusOnly(m.inputs, m.focus)
		return m, textinput.Blink
	case "j", "down":
		if m.cursor < len(trips)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(trips) {
			return m, navigateTo(navigateMsg{to: viewBooking, tripID: trips[m.cursor].ID})
		}
	case "s":
		i := slices.Index(domain.PageSizes, m.limit)
		m.limit = domain.PageSizes[(i+1)%len(domain.PageSizes)]
		m.cursor = 0
		if m.result == nil {
			return m, nil
		}
		return m.fetch(1)
	}

	if m.result == nil || m.loading {
		return m, nil
	}
	switch msg.String() {
	case "h", "left":
		if m.result.HasPrev() {
			m.cursor = 0
			return m.fetch(m.page - 1)
		}
	case "l", "right":
		if m.result.HasNext() {
			m.cursor = 0
			return m.fetch(m.page + 1)
		}
	case "H", "home":
		if m.result.HasPrev() {
			m.cursor = 0
			return m.fetch(1)
		}
	case "L", "end":
		if m.result.HasNext() {
			m.cursor = 0
			return m.fetch(m.result.TotalPages)
		}
	}
	return m, nil
}

func (m searchModel) helpKeys() string {
	if m.editing() {
		return helpBar("tab", "next", "enter", "search", "esc", "results")
	}
	return helpBar("1-2", "tabs", "j/k", "nav", "enter", "book", "h/l", "page", "s", "page size", "/", "edit", "O", "logout", "q", "quit")
}

func (m searchModel) View() string {
	var b strings.Builder

	b.WriteString("  " + titleStyle.Render("Find Your Journey") + "\n\n")
	for i := 0; i < numSearchFields; i++ {
		label := labelStyle.Render(searchLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(searchLabels[i])
		}
		fmt.Fprintf(&b, "  %s %s\n", label, m.inputs[i].View())
	}
	if m.status != "" {
		b.WriteString("\n  " + errorStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("Available Trips") +
		"  " + metaStyle.Render(fmt.Sprintf("%d per page", m.limit)) + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + m.spinner.View() + " " + dimStyle.Render("Searching trips...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render("Unable to load trips. Please try again.") + "\n")
		return b.String()
	case m.result == nil:
		b.WriteString("  " + dimStyle.Render("Enter a route and press enter to search.") + "\n")
		return b.String()
	case len(m.result.Data) == 0:
		b.WriteString("  " + dimStyle.Render("No trips found. Try adjusting your search criteria.") + "\n")
		return b.String()
	}

	for i, trip := range m.result.Data {
		b.WriteString(m.renderTrip(trip, i == m.cursor && !m.editing()) + "\n")
	}
	b.WriteString("\n  " + renderPager(*m.result) + "\n")
	b.WriteString("  " + metaStyle.Render(fmt.Sprintf("Showing %d of %d trips", len(m.result.Data), m.result.Total)) + "\n")
	return b.String()
}

func (m searchModel) renderTrip(t domain.Trip, selected bool) string {
	route := padRight(t.Source+" → "+t.Destination, 26)
	times := padRight(formatClock(t.DepartureTime)+" – "+formatClock(t.ArrivalTime), 28)
	dur := padRight(domain.FormatDuration(t.Duration()), 8)
	price := priceStyle.Render(padRight(domain.FormatPrice(t.Price), 10))
	seats := dimStyle.Render(fmt.Sprintf("%d seats", t.AvailableSeats))
	bus := metaStyle.Render(t.Bus.BusNumber)

	cursor := "  "
	name := normalStyle.Render(route)
	if selected {
		cursor = accentStyle.Render("> ")
		name = selectedStyle.Render(route)
	}
	line := cursor + name + dimStyle.Render(times) + dimStyle.Render(dur) + price + seats + "  " + bus
	if selected {
		return selectedRowBg.Render(line)
	}
	return line
}

// renderPager renders first/prev, a window of page numbers, and next/last.
// Controls that cannot move are dimmed.
func renderPager(p domain.TripPage) string {
	ctl := func(label string, enabled bool) string {
		if enabled {
			return normalStyle.Render(label)
		}
		return metaStyle.Render(label)
	}

	parts := []string{ctl("«", p.HasPrev()), ctl("‹", p.HasPrev())}
	for _, n := range p.Window() {
		label := strconv.Itoa(n)
		if n == p.CurrentPage {
			parts = append(parts, accentStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	parts = append(parts, ctl("›", p.HasNext()), ctl("»", p.HasNext()))
	return strings.Join(parts, " ")
}
