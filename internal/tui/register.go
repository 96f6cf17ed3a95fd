package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/auth"
)

const (
	registerFirstName = iota
	registerLastName
	registerEmail
	registerPassword
	registerConfirm
)

type registerDoneMsg struct {
	err error
}

// RegisterScreen is the account creation form
type RegisterScreen struct {
	deps    *Deps
	keys    KeyMap
	form    form
	loading bool
	err     string
}

// NewRegisterScreen creates the registration screen
func NewRegisterScreen(deps *Deps) RegisterScreen {
	keys := DefaultKeyMap()
	return RegisterScreen{
		deps: deps,
		keys: keys,
		form: newForm(keys,
			field{label: "First name", charLimit: 64},
			field{label: "Last name", charLimit: 64},
			field{label: "Email", placeholder: "you@example.com", charLimit: 254},
			field{label: "Password", secret: true, charLimit: 128},
			field{label: "Confirm password", secret: true, charLimit: 128},
		),
	}
}

func (s RegisterScreen) Capturing() bool { return true }

func (s RegisterScreen) Init() tea.Cmd { return nil }

func (s RegisterScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		return s, GoWithNotice(auth.LoginPath, "Account created. Please sign in.")

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		switch {
		case key.Matches(msg, s.keys.Enter):
			return s.submit()
		case key.Matches(msg, s.keys.Escape):
			return s, Go(auth.LoginPath)
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s RegisterScreen) submit() (tea.Model, tea.Cmd) {
	payload := api.SignupPayload{
		FirstName: s.form.Value(registerFirstName),
		LastName:  s.form.Value(registerLastName),
		Email:     s.form.Value(registerEmail),
		Password:  s.form.Value(registerPassword),
	}
	switch {
	case payload.FirstName == "" || payload.LastName == "" || payload.Email == "" || payload.Password == "":
		s.err = "All fields are required"
		return s, nil
	case !strings.Contains(payload.Email, "@"):
		s.err = "Enter a valid email address"
		return s, nil
	case payload.Password != s.form.Value(registerConfirm):
		s.err = "Passwords do not match"
		return s, nil
	}

	s.loading = true
	s.err = ""
	client := s.deps.Client
	return s, func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		return registerDoneMsg{err: client.Signup(ctx, payload)}
	}
}

func (s RegisterScreen) View() string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Create account"))
	b.WriteString("\n\n")
	b.WriteString(s.form.View())
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(WarningStyle.Render("Creating account..."))
	case s.err != "":
		b.WriteString(ErrorStyle.Render(s.err))
	default:
		b.WriteString(DimStyle.Render("enter create · esc back to sign in"))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(PanelStyle.Render(b.String()))
}
