package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// debugBuffer is how many entries the panel keeps
const debugBuffer = 100

type debugKind int

const (
	debugInfo debugKind = iota
	debugWarn
	debugError
	debugAuth
	debugNav
)

var debugTags = map[debugKind]string{
	debugInfo:  "log",
	debugWarn:  "warn",
	debugError: "err",
	debugAuth:  "auth",
	debugNav:   "nav",
}

var debugStyles = map[debugKind]lipgloss.Style{
	debugInfo:  DimStyle,
	debugWarn:  WarningStyle,
	debugError: ErrorStyle,
	debugAuth:  lipgloss.NewStyle().Foreground(ColorMagenta).Bold(true),
	debugNav:   lipgloss.NewStyle().Foreground(ColorCyan),
}

type debugEntry struct {
	at   time.Time
	kind debugKind
	text string
}

// DebugPanel shows recent log records and session events beside the
// current screen when debug mode is on.
type DebugPanel struct {
	enabled bool
	entries []debugEntry
	now     func() time.Time
}

// DebugEventMsg carries one formatted log line from the slog sink
type DebugEventMsg struct {
	Line string
}

// NewDebugPanel creates a panel. A disabled panel ignores everything.
func NewDebugPanel(enabled bool) DebugPanel {
	return DebugPanel{enabled: enabled, now: time.Now}
}

// DebugSender returns a sink function that forwards lines to the program as
// DebugEventMsg, in the order they were logged.
func DebugSender(send func(tea.Msg)) func(string) {
	out := newOrderedSender(send)
	return func(line string) {
		out.Send(DebugEventMsg{Line: line})
	}
}

func (d *DebugPanel) IsEnabled() bool {
	return d.enabled
}

// AddLine records a sink line. The level and the auth component are
// picked out of its key=value text.
func (d *DebugPanel) AddLine(line string) {
	kind, text := classifyLine(line)
	d.add(kind, text)
}

// AddNavigation records a route change
func (d *DebugPanel) AddNavigation(path string) {
	d.add(debugNav, path)
}

// AddGuardResult records the outcome of a guard check
func (d *DebugPanel) AddGuardResult(path string, state GuardState) {
	d.add(debugAuth, "guard "+state.String()+" "+path)
}

func (d *DebugPanel) add(kind debugKind, text string) {
	if !d.enabled {
		return
	}
	d.entries = append(d.entries, debugEntry{at: d.now(), kind: kind, text: text})
	if len(d.entries) > debugBuffer {
		d.entries = d.entries[len(d.entries)-debugBuffer:]
	}
}

func classifyLine(line string) (debugKind, string) {
	kind := debugInfo
	switch {
	case strings.HasPrefix(line, "level=ERROR"):
		kind = debugError
	case strings.HasPrefix(line, "level=WARN"):
		kind = debugWarn
	}
	if i := strings.Index(line, "msg="); i >= 0 {
		line = line[i+len("msg="):]
	}

	// Errors stay red even when they come from the session layer
	if kind == debugInfo && (strings.Contains(line, "component=auth") || strings.Contains(line, "status=401")) {
		kind = debugAuth
	}
	return kind, line
}

// Lines returns the entries as plain text, oldest first
func (d *DebugPanel) Lines() []string {
	lines := make([]string, len(d.entries))
	for i, e := range d.entries {
		lines[i] = e.plain()
	}
	return lines
}

func (e debugEntry) plain() string {
	return fmt.Sprintf("%s %-4s %s", e.at.Format("15:04:05.000"), debugTags[e.kind], e.text)
}

// truncateLine cuts s to at most width terminal cells, ending in "…"
func truncateLine(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

// Render draws the newest entries that fit in a width x height box
func (d *DebugPanel) Render(width, height int) string {
	if !d.enabled {
		return ""
	}

	rows := height - 4
	if rows < 1 {
		rows = 1
	}
	maxWidth := width - 4
	if maxWidth < 10 {
		maxWidth = 10
	}

	start := 0
	if len(d.entries) > rows {
		start = len(d.entries) - rows
	}
	lines := make([]string, 0, rows)
	for _, e := range d.entries[start:] {
		lines = append(lines, debugStyles[e.kind].Render(truncateLine(e.plain(), maxWidth)))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	title := lipgloss.NewStyle().Foreground(ColorYellow).Bold(true).Render("DEBUG")
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorYellow).
		Padding(0, 1).
		Render(title + "\n" + strings.Join(lines, "\n"))
}
