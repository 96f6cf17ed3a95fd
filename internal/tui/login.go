package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/auth"
)

// capturer is implemented by screens that take raw key input, during which
// global single-key shortcuts are disabled.
type capturer interface {
	Capturing() bool
}

const (
	loginEmail = iota
	loginPassword
)

// loginMountedMsg carries the state read when the login screen opens
type loginMountedMsg struct {
	authenticated bool
	email         string
}

// loginDoneMsg is the result of a login attempt
type loginDoneMsg struct {
	route string
	err   error
}

// LoginScreen is the sign-in form
type LoginScreen struct {
	deps     *Deps
	keys     KeyMap
	form     form
	remember bool
	loading  bool
	err      string
	notice   string
}

// NewLoginScreen creates the login screen. notice is shown above the form.
func NewLoginScreen(deps *Deps, notice string) LoginScreen {
	keys := DefaultKeyMap()
	return LoginScreen{
		deps: deps,
		keys: keys,
		form: newForm(keys,
			field{label: "Email", placeholder: "you@example.com", charLimit: 254},
			field{label: "Password", placeholder: "password", secret: true, charLimit: 128},
		),
		notice: notice,
	}
}

func (s LoginScreen) Capturing() bool { return true }

func (s LoginScreen) Init() tea.Cmd {
	session := s.deps.Session
	logger := s.deps.logger()
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		email, err := session.Store().RememberedEmail(ctx)
		if err != nil {
			logger.Warn("read remembered email", "error", err)
		}
		return loginMountedMsg{
			authenticated: session.IsAuthenticated(ctx),
			email:         email,
		}
	}
}

func (s LoginScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginMountedMsg:
		if msg.authenticated {
			return s, Go(auth.HomePath)
		}
		if msg.email != "" {
			s.form.SetValue(loginEmail, msg.email)
			s.form.setFocus(loginPassword)
			s.remember = true
		}
		return s, nil

	case loginDoneMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		return s, Go(msg.route)

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		switch {
		case key.Matches(msg, s.keys.Enter):
			return s.submit()
		case key.Matches(msg, s.keys.Register):
			return s, Go(auth.RegisterPath)
		case msg.String() == "ctrl+t":
			s.remember = !s.remember
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s LoginScreen) submit() (tea.Model, tea.Cmd) {
	email := s.form.Value(loginEmail)
	password := s.form.Value(loginPassword)
	if email == "" || password == "" {
		s.err = "Email and password are required"
		return s, nil
	}

	s.loading = true
	s.err = ""
	s.notice = ""
	client, session, remember := s.deps.Client, s.deps.Session, s.remember
	logger := s.deps.logger()

	return s, func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()

		pair, err := client.Login(ctx, email, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if err := session.Login(ctx, pair.Access, pair.Refresh); err != nil {
			return loginDoneMsg{err: err}
		}

		store := session.Store()
		if remember {
			err = store.RememberEmail(ctx, email)
		} else {
			err = store.ForgetEmail(ctx)
		}
		if err != nil {
			logger.Warn("update remembered email", "error", err)
		}
		return loginDoneMsg{route: session.PostLoginRoute(ctx)}
	}
}

func (s LoginScreen) View() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	if s.notice != "" {
		b.WriteString(SuccessStyle.Render(s.notice) + "\n\n")
	}
	b.WriteString(s.form.View())
	b.WriteString("\n\n")

	check := "[ ]"
	if s.remember {
		check = "[x]"
	}
	b.WriteString(DimStyle.Render(check + " Remember email (ctrl+t)"))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(WarningStyle.Render("Signing in..."))
	case s.err != "":
		b.WriteString(ErrorStyle.Render(s.err))
	default:
		b.WriteString(DimStyle.Render("enter sign in · ctrl+r create account"))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(PanelStyle.Render(b.String()))
}
