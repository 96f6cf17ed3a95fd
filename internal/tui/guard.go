package tui

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/todo-tui/internal/auth"
)

// DefaultGuardInterval is how often a mounted guard re-checks the session
const DefaultGuardInterval = 30 * time.Second

// GuardState is the route guard's view of the session
type GuardState int

const (
	GuardChecking GuardState = iota
	GuardAuthorized
	GuardUnauthorized
)

func (s GuardState) String() string {
	switch s {
	case GuardAuthorized:
		return "authorized"
	case GuardUnauthorized:
		return "unauthorized"
	default:
		return "checking"
	}
}

var guardIDs atomic.Int64

// guardTickMsg triggers a periodic re-check of guard id
type guardTickMsg struct {
	id int64
}

// guardCheckedMsg carries the result of one check
type guardCheckedMsg struct {
	id         int64
	authorized bool
}

// Guard wraps a protected screen. It checks the session on mount and every
// Interval, renders the child only while the session is valid, and sends the
// user to the login page otherwise.
type Guard struct {
	id       int64
	session  *auth.Manager
	child    tea.Model
	interval time.Duration
	state    GuardState
	started  bool // child.Init has run
	stopped  bool
	spinner  spinner.Model
}

// NewGuard wraps child. A non-positive interval uses DefaultGuardInterval.
func NewGuard(session *auth.Manager, child tea.Model, interval time.Duration) *Guard {
	if interval <= 0 {
		interval = DefaultGuardInterval
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorYellow)

	return &Guard{
		id:       guardIDs.Add(1),
		session:  session,
		child:    child,
		interval: interval,
		state:    GuardChecking,
		spinner:  s,
	}
}

// State returns the current guard state
func (g *Guard) State() GuardState {
	return g.state
}

// Child returns the wrapped screen
func (g *Guard) Child() tea.Model {
	return g.child
}

// Unmount tears the guard down. Pending ticks for it are dropped and not
// re-armed.
func (g *Guard) Unmount() {
	g.stopped = true
}

// Capturing reports whether the child is taking raw key input
func (g *Guard) Capturing() bool {
	if g.state != GuardAuthorized {
		return false
	}
	c, ok := g.child.(capturer)
	return ok && c.Capturing()
}

func (g *Guard) Init() tea.Cmd {
	return tea.Batch(g.spinner.Tick, g.check())
}

// check runs one verification pass off the update loop
func (g *Guard) check() tea.Cmd {
	id, session := g.id, g.session
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		return guardCheckedMsg{id: id, authorized: session.Verify(ctx)}
	}
}

func (g *Guard) tick() tea.Cmd {
	id := g.id
	return tea.Tick(g.interval, func(time.Time) tea.Msg {
		return guardTickMsg{id: id}
	})
}

func (g *Guard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case guardTickMsg:
		if msg.id != g.id || g.stopped {
			return g, nil
		}
		return g, g.check()

	case guardCheckedMsg:
		if msg.id != g.id || g.stopped {
			return g, nil
		}
		cmds := []tea.Cmd{g.tick()}
		if msg.authorized {
			g.state = GuardAuthorized
			if !g.started {
				g.started = true
				cmds = append(cmds, g.child.Init())
			}
		} else {
			g.state = GuardUnauthorized
		}
		return g, tea.Batch(cmds...)

	case spinner.TickMsg:
		if g.state == GuardChecking {
			var cmd tea.Cmd
			g.spinner, cmd = g.spinner.Update(msg)
			return g, cmd
		}

	case tea.KeyMsg:
		if g.state != GuardAuthorized {
			return g, nil
		}
	}

	if !g.started {
		return g, nil
	}
	var cmd tea.Cmd
	g.child, cmd = g.child.Update(msg)
	return g, cmd
}

func (g *Guard) View() string {
	switch g.state {
	case GuardAuthorized:
		return g.child.View()
	case GuardUnauthorized:
		return ""
	default:
		return g.spinner.View() + " Checking session..."
	}
}
