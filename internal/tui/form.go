package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// field describes one form input
type field struct {
	label       string
	placeholder string
	value       string
	secret      bool
	charLimit   int
}

// form is a vertical list of text inputs with one focused at a time
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	keys   KeyMap
}

func newForm(keys KeyMap, fields ...field) form {
	f := form{keys: keys}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.placeholder
		ti.Prompt = "❯ "
		ti.PromptStyle = InputPromptStyle
		ti.CharLimit = fd.charLimit
		ti.Width = 40
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
		}
		ti.SetValue(fd.value)
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Value returns the trimmed value of input i. Secret fields are not trimmed.
func (f form) Value(i int) string {
	if f.inputs[i].EchoMode == textinput.EchoPassword {
		return f.inputs[i].Value()
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) SetValue(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f *form) setFocus(i int) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Update moves focus on tab/shift+tab and feeds everything else to the
// focused input.
func (f form) Update(msg tea.Msg) (form, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.NextField):
			f.setFocus(f.focus + 1)
			return f, nil
		case key.Matches(msg, f.keys.PrevField):
			f.setFocus(f.focus - 1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) View() string {
	rows := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		label := LabelStyle.Render(f.labels[i])
		if i == f.focus {
			label = FocusedLabelStyle.Render(f.labels[i])
		}
		rows[i] = lipgloss.JoinHorizontal(lipgloss.Top, label, in.View())
	}
	return strings.Join(rows, "\n")
}
