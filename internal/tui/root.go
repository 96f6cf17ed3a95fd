package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/todo-tui/internal/auth"
)

// Protected routes
const (
	TodosPath   = "/todos"
	AccountPath = "/account"
)

var tabs = []struct {
	path  string
	label string
}{
	{auth.HomePath, "1 Dashboard"},
	{TodosPath, "2 Todos"},
	{AccountPath, "3 Account"},
}

// sessionStatusMsg refreshes the header's session indicator
type sessionStatusMsg struct {
	status auth.Status
}

// loggedOutMsg is the result of an explicit logout
type loggedOutMsg struct {
	err error
}

// Model is the root Bubble Tea model
type Model struct {
	// Terminal dimensions
	width  int
	height int
	ready  bool

	deps *Deps

	// Routing
	route  string
	active tea.Model
	guard  *Guard // Set while a protected route is shown

	// Session indicator
	status auth.Status

	// Key bindings and help
	keys     KeyMap
	help     help.Model
	showHelp bool

	debug DebugPanel
	err   string
}

// NewRootModel creates the root model. The first screen is the router's
// current path.
func NewRootModel(deps *Deps) Model {
	return Model{
		deps:  deps,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		debug: NewDebugPanel(deps.Debug),
	}
}

// Route returns the route currently shown
func (m Model) Route() string {
	return m.route
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	start := m.deps.Router.CurrentPath()
	if start == "" {
		start = auth.HomePath
	}
	return Go(start)
}

func (m Model) statusCmd() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		return sessionStatusMsg{status: session.Status(ctx)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	session, route := m.deps.Session, m.route
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		return loggedOutMsg{err: session.Logout(ctx, route)}
	}
}

// switchRoute unmounts the current screen and mounts the one for path.
// Unknown paths fall back to the dashboard.
func (m *Model) switchRoute(path, notice string) tea.Cmd {
	if m.guard != nil {
		m.guard.Unmount()
		m.guard = nil
	}
	m.err = ""

	switch path {
	case auth.LoginPath:
		s := NewLoginScreen(m.deps, notice)
		m.mount(path, s)
		return s.Init()
	case auth.RegisterPath:
		s := NewRegisterScreen(m.deps)
		m.mount(path, s)
		return s.Init()
	}

	var child tea.Model
	switch path {
	case TodosPath:
		child = NewTodosScreen(m.deps)
	case AccountPath:
		child = NewAccountScreen(m.deps)
	default:
		path = auth.HomePath
		child = NewDashboardScreen(m.deps)
	}

	g := NewGuard(m.deps.Session, child, m.deps.GuardInterval)
	m.guard = g
	m.mount(path, g)
	return g.Init()
}

func (m *Model) mount(path string, screen tea.Model) {
	m.route = path
	m.active = screen
	m.deps.Router.Set(path)
	m.deps.logger().Debug("navigate", "path", path)
	m.debug.AddNavigation(path)
}

func (m Model) capturing() bool {
	c, ok := m.active.(capturer)
	return ok && c.Capturing()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width

	case NavigateMsg:
		if msg.Path == m.route && m.active != nil && msg.Notice == "" {
			return m, nil
		}
		return m, tea.Batch(m.switchRoute(msg.Path, msg.Notice), m.statusCmd())

	case sessionStatusMsg:
		m.status = msg.status
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.err = "Logout: " + msg.err.Error()
		}
		return m, m.statusCmd()

	case DebugEventMsg:
		m.debug.AddLine(msg.Line)
		return m, nil

	case guardCheckedMsg:
		state := GuardUnauthorized
		if msg.authorized {
			state = GuardAuthorized
		}
		m.debug.AddGuardResult(m.route, state)
		cmds = append(cmds, m.statusCmd())

	case loginDoneMsg:
		cmds = append(cmds, m.statusCmd())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, tea.Quit
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
				m.showHelp = false
			}
			return m, nil
		}

		public := auth.IsPublicPath(m.route)
		if key.Matches(msg, m.keys.Logout) && !public {
			return m, m.logoutCmd()
		}
		if !public && !m.capturing() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.showHelp = true
				return m, nil
			case key.Matches(msg, m.keys.Dashboard):
				return m, m.navigate(auth.HomePath)
			case key.Matches(msg, m.keys.Todos):
				return m, m.navigate(TodosPath)
			case key.Matches(msg, m.keys.Account):
				return m, m.navigate(AccountPath)
			}
		}
	}

	if m.active != nil {
		var cmd tea.Cmd
		m.active, cmd = m.active.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// navigate switches to path in response to a key press
func (m *Model) navigate(path string) tea.Cmd {
	if path == m.route {
		return nil
	}
	return m.switchRoute(path, "")
}

// View renders the current screen
func (m Model) View() string {
	if m.active == nil {
		return "Loading..."
	}
	if m.showHelp && m.ready {
		return m.helpView()
	}

	parts := []string{m.renderHeader()}
	if !auth.IsPublicPath(m.route) {
		parts = append(parts, m.renderTabs())
	}

	body := m.active.View()
	if m.debug.IsEnabled() && m.ready {
		debugWidth := m.width / 3
		if debugWidth < 30 {
			debugWidth = 30
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.width-debugWidth).Render(body),
			m.debug.Render(debugWidth-2, m.height-6),
		)
	}
	parts = append(parts, body, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title and session indicator
func (m Model) renderHeader() string {
	title := HeaderStyle.Render("TODO")
	subtitle := lipgloss.NewStyle().
		Foreground(ColorFgMuted).
		Render("Terminal todo client")

	var session string
	if m.status.Authenticated {
		session = StatusActiveStyle.Render("● signed in")
		if !m.status.ExpiresAt.IsZero() {
			session += DimStyle.Render(" · token expires " + m.status.ExpiresAt.Local().Format(time.Kitchen))
		}
	} else {
		session = StatusIdleStyle.Render("○ signed out")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Render(title+"  "+subtitle+"  "+session) + "\n"
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.path == m.route {
			rendered[i] = TabActiveStyle.Render(t.label)
		} else {
			rendered[i] = TabStyle.Render(t.label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m Model) renderStatusBar() string {
	var b strings.Builder
	if m.err != "" {
		b.WriteString(ErrorStyle.Render(m.err) + "  ")
	}
	if auth.IsPublicPath(m.route) {
		b.WriteString(DimStyle.Render("ctrl+c quit"))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return StatusBarStyle.Render(b.String())
}

// helpView renders the help overlay
func (m Model) helpView() string {
	h := m.help
	h.ShowAll = true
	content := HelpTitleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		h.View(m.keys) + "\n\n" +
		DimStyle.Render("Press ? or Esc to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		HelpStyle.Render(content),
	)
}
