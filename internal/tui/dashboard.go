package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/model"
)

type userLoadedMsg struct {
	user *model.User
	err  error
}

type summaryLoadedMsg struct {
	summary model.Summary
	err     error
}

// DashboardScreen greets the user and summarises the first page of todos
type DashboardScreen struct {
	deps    *Deps
	keys    KeyMap
	user    *model.User
	summary model.Summary
	loading bool
	err     string
}

// NewDashboardScreen creates the dashboard
func NewDashboardScreen(deps *Deps) DashboardScreen {
	return DashboardScreen{deps: deps, keys: DefaultKeyMap(), loading: true}
}

func (s DashboardScreen) Init() tea.Cmd {
	return tea.Batch(loadUserCmd(s.deps.Client), s.loadSummary())
}

func loadUserCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		user, err := client.GetUser(ctx)
		return userLoadedMsg{user: user, err: err}
	}
}

func (s DashboardScreen) loadSummary() tea.Cmd {
	client := s.deps.Client
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		page, err := client.ListTodos(ctx, api.ListTodosParams{Page: 1})
		if err != nil {
			return summaryLoadedMsg{err: err}
		}
		return summaryLoadedMsg{summary: model.Summarize(page)}
	}
}

func (s DashboardScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case userLoadedMsg:
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.user = msg.user

	case summaryLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.err = ""
		s.summary = msg.summary

	case tea.KeyMsg:
		if key.Matches(msg, s.keys.Refresh) {
			s.loading = true
			return s, s.Init()
		}
	}
	return s, nil
}

func (s DashboardScreen) View() string {
	var b strings.Builder

	greeting := "Welcome back"
	if s.user != nil {
		greeting += ", " + s.user.DisplayName()
	}
	b.WriteString(PanelTitleStyle.Render(greeting))
	b.WriteString("\n\n")

	if s.err != "" {
		b.WriteString(ErrorStyle.Render(s.err) + "\n\n")
	}
	if s.loading {
		b.WriteString(DimStyle.Render("Loading todos..."))
		return PanelStyle.Render(b.String())
	}

	fmt.Fprintf(&b, "Total todos:  %s\n", SuccessStyle.Render(fmt.Sprint(s.summary.Total)))
	fmt.Fprintf(&b, "Completed:    %s\n\n", SuccessStyle.Render(fmt.Sprint(s.summary.Completed)))

	b.WriteString(PanelTitleStyle.Render("Upcoming"))
	b.WriteString("\n")
	if len(s.summary.Upcoming) == 0 {
		b.WriteString(DimStyle.Render("Nothing pending."))
	}
	for _, t := range s.summary.Upcoming {
		b.WriteString(renderTodoLine(t, false) + "\n")
	}
	b.WriteString("\n" + DimStyle.Render("r refresh · 2 open todos"))
	return PanelStyle.Render(b.String())
}

// renderTodoLine renders one todo as a single list row
func renderTodoLine(t model.Todo, selected bool) string {
	pri := t.PriorityIcon()
	switch t.Priority {
	case model.PriorityExtreme:
		pri = PriorityExtremeStyle.Render(pri)
	case model.PriorityModerate:
		pri = PriorityModerateStyle.Render(pri)
	case model.PriorityLow:
		pri = PriorityLowStyle.Render(pri)
	}

	date := t.TodoDate
	if date == "" {
		date = "no date   "
	}
	title := truncate(t.Title, 48)

	style := TodoStyle
	switch {
	case selected:
		style = TodoSelectedStyle
	case t.IsCompleted:
		style = TodoDoneStyle
	}
	return fmt.Sprintf("%s %s %s  %s", t.StatusIcon(), pri, DimStyle.Render(date), style.Render(title))
}

// truncate shortens s to max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
