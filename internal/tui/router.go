package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// NavigateMsg asks the root model to show the screen for Path
type NavigateMsg struct {
	Path   string
	Notice string // Optional message for the destination screen
}

// Router holds the current route. It satisfies auth.Navigator so the session
// layer can redirect from outside the update loop.
type Router struct {
	mu   sync.RWMutex
	path string
	send *orderedSender
}

// NewRouter creates a router starting at path
func NewRouter(path string) *Router {
	return &Router{path: path}
}

// Attach sets the function that delivers NavigateMsg to the program,
// normally tea.Program.Send.
func (r *Router) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = newOrderedSender(send)
}

// CurrentPath returns the current route
func (r *Router) CurrentPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path
}

// Set records path as current without notifying the program
func (r *Router) Set(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Navigate records path as current and tells the program to switch screens.
// Delivery is asynchronous, since Program.Send blocks while Update is running
// and Navigate may be reached from inside a command or an HTTP round trip.
// Messages arrive in call order, so the last Navigate wins.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	if r.send != nil {
		r.send.Send(NavigateMsg{Path: path})
	}
}

// Go returns a command that navigates from inside Update
func Go(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

// GoWithNotice is Go with a message for the destination screen
func GoWithNotice(path, notice string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path, Notice: notice}
	}
}

// orderedSender delivers messages from a single goroutine in the order Send
// was called. Send never blocks.
type orderedSender struct {
	mu       sync.Mutex
	queue    []tea.Msg
	draining bool
	send     func(tea.Msg)
}

func newOrderedSender(send func(tea.Msg)) *orderedSender {
	return &orderedSender{send: send}
}

func (s *orderedSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, msg)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *orderedSender) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.send(msg)
	}
}
