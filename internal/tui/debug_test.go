package tui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind debugKind
		wantText string
	}{
		{"info", `level=INFO msg="api request" status=200`, debugInfo, `"api request" status=200`},
		{"auth component", `level=INFO msg="session ended" component=auth reason=expired`, debugAuth, `"session ended" component=auth reason=expired`},
		{"401 trace", `level=DEBUG msg="api request" path=/api/todos/ status=401`, debugAuth, `"api request" path=/api/todos/ status=401`},
		{"warn", `level=WARN msg="read access token" component=auth`, debugWarn, `"read access token" component=auth`},
		{"error", `level=ERROR msg="logout after 401" component=auth`, debugError, `"logout after 401" component=auth`},
		{"not a record", "plain text", debugInfo, "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text := classifyLine(tt.line)
			if kind != tt.wantKind || text != tt.wantText {
				t.Errorf("classifyLine() = %v %q, want %v %q", kind, text, tt.wantKind, tt.wantText)
			}
		})
	}
}

func TestTruncateLine(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "session ended", 20, "session ended"},
		{"ascii", "session ended for ada", 10, "session e…"},
		{"multibyte", "Zoë's café ünïcödé", 8, "Zoë's c…"},
		{"wide runes", "ログアウトしました", 7, "ログア…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateLine(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("truncateLine() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateLine() = %q is not valid UTF-8", got)
			}
			if w := lipgloss.Width(got); w > tt.width {
				t.Errorf("width = %d, want <= %d", w, tt.width)
			}
		})
	}
}

func TestDebugPanel(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	d := NewDebugPanel(true)
	d.now = func() time.Time { return at }

	d.AddNavigation("/todos")
	d.AddGuardResult("/todos", GuardUnauthorized)
	d.AddLine(`level=INFO msg="session ended" component=auth reason=expired path=/todos`)

	want := []string{
		"09:30:00.000 nav  /todos",
		"09:30:00.000 auth guard " + GuardUnauthorized.String() + " /todos",
		`09:30:00.000 auth "session ended" component=auth reason=expired path=/todos`,
	}
	got := d.Lines()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Lines() = %q, want %q", got, want)
	}

	for i := 0; i < debugBuffer+5; i++ {
		d.AddLine("level=INFO msg=tick")
	}
	if n := len(d.Lines()); n != debugBuffer {
		t.Errorf("kept %d entries, want %d", n, debugBuffer)
	}

	d.AddLine("level=INFO msg=ünïcödé-ünïcödé-ünïcödé-ünïcödé-ünïcödé")
	view := d.Render(30, 8)
	if !utf8.ValidString(view) {
		t.Error("Render() produced invalid UTF-8")
	}
	if !strings.Contains(view, "…") {
		t.Errorf("long line not truncated:\n%s", view)
	}
}

func TestDebugPanelDisabled(t *testing.T) {
	d := NewDebugPanel(false)
	d.AddLine("level=ERROR msg=boom")
	d.AddNavigation("/")
	if len(d.Lines()) != 0 || d.Render(40, 10) != "" {
		t.Error("disabled panel recorded or rendered entries")
	}
}

func TestDebugSenderKeepsOrder(t *testing.T) {
	got := make(chan tea.Msg, 10)
	send := DebugSender(func(msg tea.Msg) { got <- msg })

	for _, line := range []string{"one", "two", "three"} {
		send(line)
	}
	for _, want := range []string{"one", "two", "three"} {
		select {
		case msg := <-got:
			if line := msg.(DebugEventMsg).Line; line != want {
				t.Fatalf("got %q, want %q", line, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("%q not delivered", want)
		}
	}
}
