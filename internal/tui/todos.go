package tui

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/model"
)

// searchDebounce delays the list reload while the user is typing a query
const searchDebounce = 300 * time.Millisecond

type todosMode int

const (
	todosList todosMode = iota
	todosSearch
	todosForm
	todosConfirmDelete
)

const (
	todoTitle = iota
	todoDescription
	todoDate
)

// todosLoadedMsg is the result of fetching one page
type todosLoadedMsg struct {
	seq  int
	page int
	data *model.TodoPage
	err  error
}

// todoSavedMsg is the result of a create, update or delete
type todoSavedMsg struct {
	notice string
	err    error
}

type searchDebounceMsg struct {
	seq int
}

// TodosScreen lists, filters and edits todos
type TodosScreen struct {
	deps *Deps
	keys KeyMap
	mode todosMode

	// Current page as returned by the server
	todos    []model.Todo
	count    int
	page     int
	pageSize int // Taken from the length of the first page
	seq      int // Latest load; older responses are dropped
	loading  bool

	filter model.DueFilter
	cursor int

	search      textinput.Model
	debounceSeq int

	form     form
	priority model.Priority
	editing  *model.Todo

	err    string
	notice string
}

// NewTodosScreen creates the todo list screen
func NewTodosScreen(deps *Deps) TodosScreen {
	search := textinput.New()
	search.Placeholder = "search title or description"
	search.Prompt = "/ "
	search.PromptStyle = InputPromptStyle
	search.CharLimit = 100
	search.Width = 40

	return TodosScreen{
		deps:    deps,
		keys:    DefaultKeyMap(),
		page:    1,
		seq:     1,
		loading: true,
		filter:  model.DueAll,
		search:  search,
	}
}

func (s TodosScreen) Capturing() bool {
	return s.mode != todosList
}

func (s TodosScreen) Init() tea.Cmd {
	return s.fetch()
}

// load starts a new fetch of the current page. Responses to earlier loads
// are dropped.
func (s TodosScreen) load() (TodosScreen, tea.Cmd) {
	s.seq++
	s.loading = true
	return s, s.fetch()
}

func (s TodosScreen) fetch() tea.Cmd {
	seq, page := s.seq, s.page
	params := api.ListTodosParams{Page: page, Search: strings.TrimSpace(s.search.Value())}
	client := s.deps.Client

	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		data, err := client.ListTodos(ctx, params)
		return todosLoadedMsg{seq: seq, page: page, data: data, err: err}
	}
}

// Visible returns the current page after the due-date filter
func (s TodosScreen) Visible() []model.Todo {
	return s.filter.Apply(s.todos, s.deps.now())
}

// TotalPages returns the page count for the current query
func (s TodosScreen) TotalPages() int {
	return model.TotalPages(s.count, s.pageSize)
}

func (s TodosScreen) selected() (model.Todo, bool) {
	visible := s.Visible()
	if s.cursor < 0 || s.cursor >= len(visible) {
		return model.Todo{}, false
	}
	return visible[s.cursor], true
}

func (s *TodosScreen) clampCursor() {
	n := len(s.Visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s TodosScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case todosLoadedMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			// The last page can disappear after a delete
			if api.StatusOf(msg.err) == http.StatusNotFound && s.page > 1 {
				s.page--
				return s.load()
			}
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.err = ""
		s.todos = msg.data.Results
		s.count = msg.data.Count
		if msg.page == 1 && len(msg.data.Results) > 0 {
			s.pageSize = len(msg.data.Results)
		} else if s.pageSize == 0 {
			s.pageSize = len(msg.data.Results)
		}
		s.clampCursor()
		return s, nil

	case todoSavedMsg:
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.notice = msg.notice
		s.err = ""
		return s.load()

	case searchDebounceMsg:
		if msg.seq != s.debounceSeq {
			return s, nil
		}
		s.page = 1
		s.cursor = 0
		return s.load()

	case tea.KeyMsg:
		switch s.mode {
		case todosSearch:
			return s.updateSearch(msg)
		case todosForm:
			return s.updateForm(msg)
		case todosConfirmDelete:
			return s.updateConfirm(msg)
		}
		return s.updateList(msg)
	}

	if s.mode == todosForm {
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd
	}
	if s.mode == todosSearch {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s TodosScreen) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(s.Visible())-1 {
			s.cursor++
		}
	case key.Matches(msg, s.keys.PrevPage):
		if s.page > 1 {
			s.page--
			s.cursor = 0
			return s.load()
		}
	case key.Matches(msg, s.keys.NextPage):
		if s.page < s.TotalPages() {
			s.page++
			s.cursor = 0
			return s.load()
		}
	case key.Matches(msg, s.keys.Refresh):
		return s.load()
	case key.Matches(msg, s.keys.Filter):
		s.filter = s.filter.Next()
		s.cursor = 0
	case key.Matches(msg, s.keys.Search):
		s.mode = todosSearch
		return s, s.search.Focus()
	case key.Matches(msg, s.keys.New):
		s.openForm(nil)
		return s, textinput.Blink
	case key.Matches(msg, s.keys.Edit):
		if t, ok := s.selected(); ok {
			s.openForm(&t)
			return s, textinput.Blink
		}
	case key.Matches(msg, s.keys.Toggle):
		if t, ok := s.selected(); ok {
			return s, s.toggleCmd(t)
		}
	case key.Matches(msg, s.keys.Delete):
		if _, ok := s.selected(); ok {
			s.mode = todosConfirmDelete
		}
	}
	return s, nil
}

func (s TodosScreen) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, s.keys.Enter) || key.Matches(msg, s.keys.Escape) {
		s.mode = todosList
		s.search.Blur()
		return s, nil
	}

	before := s.search.Value()
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if s.search.Value() == before {
		return s, cmd
	}

	s.debounceSeq++
	seq := s.debounceSeq
	return s, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	}))
}

func (s TodosScreen) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s.mode = todosList
	if msg.String() != "y" {
		return s, nil
	}
	t, ok := s.selected()
	if !ok {
		return s, nil
	}
	client := s.deps.Client
	return s, func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		if err := client.DeleteTodo(ctx, t.ID); err != nil {
			return todoSavedMsg{err: err}
		}
		return todoSavedMsg{notice: fmt.Sprintf("Deleted %q", t.Title)}
	}
}

func (s *TodosScreen) openForm(t *model.Todo) {
	var title, desc, date string
	s.priority = model.PriorityModerate
	if t != nil {
		title, desc, date = t.Title, t.Description, t.TodoDate
		if t.Priority.Valid() {
			s.priority = t.Priority
		}
	}
	s.editing = t
	s.form = newForm(s.keys,
		field{label: "Title", value: title, charLimit: 200},
		field{label: "Description", value: desc, charLimit: 1000},
		field{label: "Due date", placeholder: model.DateLayout, value: date, charLimit: 10},
	)
	s.mode = todosForm
	s.err = ""
	s.notice = ""
}

func (s TodosScreen) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Escape):
		s.mode = todosList
		s.editing = nil
		return s, nil
	case key.Matches(msg, s.keys.Priority):
		s.priority = s.priority.Next()
		return s, nil
	case key.Matches(msg, s.keys.Enter):
		return s.submitForm()
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s TodosScreen) submitForm() (tea.Model, tea.Cmd) {
	title := s.form.Value(todoTitle)
	desc := s.form.Value(todoDescription)
	date := s.form.Value(todoDate)

	if title == "" {
		s.err = "Title is required"
		return s, nil
	}
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			s.err = "Due date must be YYYY-MM-DD"
			return s, nil
		}
	}

	client, priority, editing := s.deps.Client, s.priority, s.editing
	s.mode = todosList
	s.editing = nil
	s.err = ""

	if editing == nil {
		return s, func() tea.Msg {
			ctx, cancel := commandContext()
			defer cancel()
			_, err := client.CreateTodo(ctx, model.TodoInput{
				Title:       title,
				Description: desc,
				Priority:    priority,
				TodoDate:    date,
			})
			if err != nil {
				return todoSavedMsg{err: err}
			}
			return todoSavedMsg{notice: fmt.Sprintf("Created %q", title)}
		}
	}

	id := editing.ID
	return s, func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		_, err := client.UpdateTodo(ctx, id, model.TodoPatch{
			Title:       &title,
			Description: &desc,
			Priority:    &priority,
			TodoDate:    &date,
		})
		if err != nil {
			return todoSavedMsg{err: err}
		}
		return todoSavedMsg{notice: fmt.Sprintf("Updated %q", title)}
	}
}

func (s TodosScreen) toggleCmd(t model.Todo) tea.Cmd {
	client := s.deps.Client
	done := !t.IsCompleted
	return func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		if _, err := client.UpdateTodo(ctx, t.ID, model.TodoPatch{IsCompleted: &done}); err != nil {
			return todoSavedMsg{err: err}
		}
		verb := "Reopened"
		if done {
			verb = "Completed"
		}
		return todoSavedMsg{notice: fmt.Sprintf("%s %q", verb, t.Title)}
	}
}

func (s TodosScreen) View() string {
	if s.mode == todosForm {
		return s.formView()
	}

	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Todos"))
	b.WriteString("\n\n")

	if s.mode == todosSearch || s.search.Value() != "" {
		b.WriteString(s.search.View() + "\n")
	}
	fmt.Fprintf(&b, "%s  %s\n\n",
		DimStyle.Render("Due: "+s.filter.Label()),
		DimStyle.Render(fmt.Sprintf("Page %d/%d · %d total", s.page, s.TotalPages(), s.count)),
	)

	visible := s.Visible()
	switch {
	case s.loading && len(s.todos) == 0:
		b.WriteString(DimStyle.Render("Loading todos..."))
	case len(visible) == 0:
		b.WriteString(DimStyle.Render("No todos match."))
	}
	for i, t := range visible {
		cursor := "  "
		if i == s.cursor {
			cursor = "❯ "
		}
		b.WriteString(cursor + renderTodoLine(t, i == s.cursor) + "\n")
	}
	b.WriteString("\n")

	switch {
	case s.mode == todosConfirmDelete:
		if t, ok := s.selected(); ok {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete %q? (y/N)", t.Title)))
		}
	case s.err != "":
		b.WriteString(ErrorStyle.Render(s.err))
	case s.notice != "":
		b.WriteString(SuccessStyle.Render(s.notice))
	default:
		b.WriteString(DimStyle.Render("n new · e edit · space done · d delete · / search · f filter · ←/→ page"))
	}
	return PanelStyle.Render(b.String())
}

func (s TodosScreen) formView() string {
	var b strings.Builder
	heading := "New todo"
	if s.editing != nil {
		heading = "Edit todo"
	}
	b.WriteString(PanelTitleStyle.Render(heading))
	b.WriteString("\n\n")
	b.WriteString(s.form.View())
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Priority") + string(s.priority))
	b.WriteString("\n\n")
	if s.err != "" {
		b.WriteString(ErrorStyle.Render(s.err) + "\n")
	}
	b.WriteString(DimStyle.Render("enter save · ctrl+p priority · tab next field · esc cancel"))
	return PanelStyle.Render(b.String())
}
