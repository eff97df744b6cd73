package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pollInterval = 300 * time.Millisecond

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model defines the application state
type Model struct {
	client      *ApiClient
	nameInput   textinput.Model
	spinner     spinner.Model
	guests      table.Model
	chobins     table.Model
	state       *State
	session     *Session
	panel       *Panel
	stepCursor  int
	currentView string
	message     string
	error       string
	pollFailed  bool
}

func initialModel(client *ApiClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "player name"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 20

	guests := table.New(
		table.WithColumns([]table.Column{
			{Title: "Guest", Width: 6},
			{Title: "Status", Width: 14},
			{Title: "Bubble", Width: 18},
			{Title: "Cook", Width: 7},
			{Title: "Wait", Width: 7},
		}),
		table.WithHeight(6),
	)
	chobins := table.New(
		table.WithColumns([]table.Column{
			{Title: "Chobin", Width: 7},
			{Title: "Status", Width: 16},
			{Title: "Button", Width: 11},
			{Title: "Step", Width: 5},
			{Title: "Progress", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(5),
	)

	return Model{
		client:      client,
		nameInput:   ti,
		spinner:     s,
		guests:      guests,
		chobins:     chobins,
		currentView: "connecting",
	}
}

// Custom message types for the tea.Model
type healthMsg struct{}

type tickMsg time.Time

type sessionMsg struct{ session *Session }

type stateMsg struct {
	state *State
	err   error
}

type panelMsg struct {
	panel *Panel
	done  bool
}

type planMsg struct {
	plan  *Plan
	panel *Panel
}

type errorMsg struct{ err error }

func checkHealth(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.CheckHealth(); err != nil {
			return errorMsg{fmt.Errorf("server at %s is not available: %w", client.BaseURL, err)}
		}
		return healthMsg{}
	}
}

func join(client *ApiClient, player string) tea.Cmd {
	return func() tea.Msg {
		s, err := client.Join(player)
		if err != nil {
			return errorMsg{err}
		}
		return sessionMsg{s}
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetchState(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		s, err := client.GetState()
		return stateMsg{state: s, err: err}
	}
}

// panelCmd runs fn and reports the resulting panel; done returns to the
// kitchen view afterwards.
func panelCmd(fn func() (*Panel, error), done bool) tea.Cmd {
	return func() tea.Msg {
		p, err := fn()
		if err != nil {
			return errorMsg{err}
		}
		return panelMsg{panel: p, done: done}
	}
}

func suggest(client *ApiClient, id int) tea.Cmd {
	return func() tea.Msg {
		plan, err := client.Suggest(id, true)
		if err != nil {
			return errorMsg{err}
		}
		p, err := client.GetPanel(id)
		if err != nil {
			return errorMsg{err}
		}
		return planMsg{plan: plan, panel: p}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, checkHealth(m.client))
}

func (m Model) selectedChobin() (int, bool) {
	if m.state == nil || len(m.state.Chobins) == 0 {
		return 0, false
	}
	i := m.chobins.Cursor()
	if i < 0 || i >= len(m.state.Chobins) {
		return 0, false
	}
	return m.state.Chobins[i].ID, true
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.currentView {
		case "join":
			if msg.String() == "enter" {
				return m, join(m.client, strings.TrimSpace(m.nameInput.Value()))
			}
		case "kitchen":
			return m.updateKitchen(msg)
		case "panel":
			return m.updatePanel(msg)
		}
	case healthMsg:
		m.currentView = "join"
		return m, nil
	case sessionMsg:
		m.session = msg.session
		m.currentView = "kitchen"
		return m, fetchState(m.client)
	case tickMsg:
		return m, fetchState(m.client)
	case stateMsg:
		// Polling keeps going through errors so a restarted server is
		// picked up again.
		if msg.err != nil {
			m.error = msg.err.Error()
			m.pollFailed = true
			return m, poll()
		}
		if m.pollFailed {
			m.error, m.pollFailed = "", false
		}
		m.state = msg.state
		m.guests.SetRows(guestRows(msg.state.Guests))
		m.chobins.SetRows(chobinRows(msg.state.Chobins))
		return m, poll()
	case panelMsg:
		m.error = ""
		m.panel = msg.panel
		if m.stepCursor >= len(msg.panel.Steps) {
			m.stepCursor = 0
		}
		if msg.done {
			m.currentView = "kitchen"
			m.panel = nil
		}
		return m, nil
	case planMsg:
		m.panel = msg.panel
		m.message = fmt.Sprintf("%s plan for guest %d, expected score %d", msg.plan.Source, msg.plan.Guest, msg.plan.Expected)
		return m, nil
	case errorMsg:
		m.error = msg.err.Error()
		var apiErr *APIError
		if m.currentView == "connecting" && !errors.As(msg.err, &apiErr) {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "connecting":
		m.spinner, cmd = m.spinner.Update(msg)
	case "join":
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateKitchen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		if id, ok := m.selectedChobin(); ok {
			m.currentView = "panel"
			m.stepCursor = 0
			m.message = ""
			return m, panelCmd(func() (*Panel, error) { return m.client.OpenCommand(id) }, false)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.chobins, cmd = m.chobins.Update(msg)
	return m, cmd
}

func (m Model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panel == nil {
		if msg.String() == "esc" {
			m.currentView = "kitchen"
		}
		return m, nil
	}
	id, step := m.panel.Chobin, m.stepCursor
	cycle := func(field, dir string) tea.Cmd {
		return panelCmd(func() (*Panel, error) { return m.client.Cycle(id, step, field, dir) }, false)
	}
	switch msg.String() {
	case "esc":
		m.currentView = "kitchen"
		m.panel = nil
	case "up", "k":
		if m.stepCursor > 0 {
			m.stepCursor--
		}
	case "down", "j":
		if m.stepCursor < len(m.panel.Steps)-1 {
			m.stepCursor++
		}
	case "right", "l":
		return m, cycle("material", "next")
	case "left", "h":
		return m, cycle("material", "previous")
	case "]":
		return m, cycle("action", "next")
	case "[":
		return m, cycle("action", "previous")
	case "g":
		return m, suggest(m.client, id)
	case "s":
		m.message = fmt.Sprintf("chobin %d is cooking", id)
		return m, panelCmd(func() (*Panel, error) { return m.client.Submit(id) }, true)
	case "x":
		m.message = fmt.Sprintf("chobin %d stopped", id)
		return m, panelCmd(func() (*Panel, error) { return m.client.Abort(id) }, true)
	}
	return m, nil
}

func guestRows(guests []Guest) []table.Row {
	rows := make([]table.Row, 0, len(guests))
	for _, g := range guests {
		bubble := ""
		if g.Bubble.Kind != "hidden" {
			bubble = g.Bubble.Text
		}
		rows = append(rows, table.Row{
			fmt.Sprint(g.ID),
			g.Status,
			bubble,
			fmt.Sprintf("%.1fs", g.CookSeconds),
			fmt.Sprintf("%.1fs", g.WaitSeconds),
		})
	}
	return rows
}

func chobinRows(chobins []Chobin) []table.Row {
	rows := make([]table.Row, 0, len(chobins))
	for _, c := range chobins {
		progress := ""
		if c.Progress > 0 {
			progress = fmt.Sprintf("%3.0f%%", c.Progress*100)
		}
		rows = append(rows, table.Row{
			fmt.Sprint(c.ID),
			c.Status,
			c.Button,
			fmt.Sprint(c.Step),
			progress,
		})
	}
	return rows
}

func scoreLine(s *State) string {
	line := fmt.Sprintf("served %d  score %d  sum %d  guests %d/%d  discarded %d  %.0fs",
		s.Scoreboard.Served, s.Scoreboard.TotalScore, s.Scoreboard.TotalSum,
		s.Counters.Exits, s.Counters.Total, s.Discarded, s.Elapsed)
	if s.Finished {
		return successStyle.Render("Finished") + " " + line
	}
	if s.NeedToCook {
		return infoStyle.Render("Cook!") + " " + line
	}
	return line
}

func panelView(p *Panel, cursor int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Chobin %d command", p.Chobin)) + "\n\n")
	for i, s := range p.Steps {
		line := fmt.Sprintf("%d. %-10s %s", s.Step+1, s.Name, s.Verb)
		if i == cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// View renders the UI
func (m Model) View() string {
	var body string
	switch m.currentView {
	case "connecting":
		body = m.spinner.View() + " connecting to " + m.client.BaseURL
	case "join":
		body = titleStyle.Render("cocan") + "\n\n" + m.nameInput.View() + "\n\n" + helpStyle.Render("enter to join, ctrl+c to quit")
	case "kitchen":
		if m.state == nil {
			body = m.spinner.View() + " loading"
			break
		}
		body = titleStyle.Render("Kitchen "+m.state.Session) + "\n" + scoreLine(m.state) + "\n\n" +
			m.guests.View() + "\n\n" + m.chobins.View() + "\n" +
			helpStyle.Render("↑/↓ choose chobin, enter open command, q quit")
	case "panel":
		if m.panel == nil {
			body = m.spinner.View() + " opening panel"
			break
		}
		body = panelView(m.panel, m.stepCursor) + "\n" +
			helpStyle.Render("↑/↓ step, ←/→ material, [/] action, g suggest, s submit, x abort, esc back")
	default:
		body = "Loading..."
	}
	if m.message != "" {
		body += "\n" + infoStyle.Render(m.message)
	}
	if m.error != "" {
		body += "\n" + errorStyle.Render(m.error)
	}
	return docStyle.Render(body)
}

func main() {
	p := tea.NewProgram(initialModel(NewApiClient()), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
	if m, ok := final.(Model); ok && m.currentView == "connecting" && m.error != "" {
		fmt.Fprintln(os.Stderr, m.error)
		os.Exit(1)
	}
}
