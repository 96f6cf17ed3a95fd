package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/auth"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	root, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return root, cmd
}

func TestInitStartsAtRouterPath(t *testing.T) {
	env := newTestEnv(t, TodosPath)
	m := NewRootModel(env.deps)

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before first route = %q", got)
	}

	msg := m.Init()()
	nav, ok := msg.(NavigateMsg)
	if !ok || nav.Path != TodosPath {
		t.Fatalf("Init() produced %#v, want NavigateMsg{%q}", msg, TodosPath)
	}
}

func TestNavigateMountsScreens(t *testing.T) {
	tests := []struct {
		path      string
		wantRoute string
		wantGuard bool
	}{
		{auth.LoginPath, auth.LoginPath, false},
		{auth.RegisterPath, auth.RegisterPath, false},
		{auth.HomePath, auth.HomePath, true},
		{TodosPath, TodosPath, true},
		{AccountPath, AccountPath, true},
		{"/nowhere", auth.HomePath, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			env := newTestEnv(t, auth.HomePath)
			m, cmd := update(t, NewRootModel(env.deps), NavigateMsg{Path: tt.path})

			if cmd == nil {
				t.Error("NavigateMsg returned no command, want screen init")
			}
			if m.Route() != tt.wantRoute {
				t.Errorf("Route() = %q, want %q", m.Route(), tt.wantRoute)
			}
			if env.router.CurrentPath() != tt.wantRoute {
				t.Errorf("router path = %q, want %q", env.router.CurrentPath(), tt.wantRoute)
			}
			if (m.guard != nil) != tt.wantGuard {
				t.Errorf("guarded = %v, want %v", m.guard != nil, tt.wantGuard)
			}
		})
	}
}

func TestRouteChangeUnmountsGuard(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: TodosPath})
	old := m.guard

	m, _ = update(t, m, NavigateMsg{Path: AccountPath})
	if m.guard == old {
		t.Fatal("guard was not replaced")
	}
	if !old.stopped {
		t.Error("previous guard not unmounted")
	}

	// A stale tick reaching the new guard must not start a check
	if _, cmd := update(t, m, guardTickMsg{id: old.id}); cmd != nil {
		t.Error("stale tick started a check")
	}

	m, _ = update(t, m, NavigateMsg{Path: auth.LoginPath})
	if m.guard != nil {
		t.Error("login route kept a guard")
	}
}

func TestRepeatedNavigateIsIgnored(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: TodosPath})
	g := m.guard

	m, cmd := update(t, m, NavigateMsg{Path: TodosPath})
	if cmd != nil || m.guard != g {
		t.Error("navigating to the current route remounted it")
	}
}

func TestNumberKeysSwitchRoutes(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	env.signIn(t)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: auth.HomePath})

	tests := []struct {
		key  string
		want string
	}{
		{"2", TodosPath},
		{"3", AccountPath},
		{"1", auth.HomePath},
	}
	for _, tt := range tests {
		m, _ = update(t, m, keyRunes(tt.key))
		if m.Route() != tt.want {
			t.Errorf("after %q Route() = %q, want %q", tt.key, m.Route(), tt.want)
		}
		if env.router.CurrentPath() != tt.want {
			t.Errorf("after %q router path = %q, want %q", tt.key, env.router.CurrentPath(), tt.want)
		}
	}
}

func TestNumberKeysIgnoredOnPublicPages(t *testing.T) {
	env := newTestEnv(t, auth.LoginPath)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: auth.LoginPath})

	m, _ = update(t, m, keyRunes("2"))
	if m.Route() != auth.LoginPath {
		t.Errorf("Route() = %q, want login", m.Route())
	}
}

func TestLogoutKey(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	env.signIn(t)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: TodosPath})

	m, cmd := update(t, m, keyCtrlL)
	if cmd == nil {
		t.Fatal("ctrl+l returned no command")
	}
	msg := cmd()
	if out, ok := msg.(loggedOutMsg); !ok || out.err != nil {
		t.Fatalf("logout produced %#v", msg)
	}

	if tok := env.accessToken(t); tok != "" {
		t.Errorf("access token = %q, want cleared", tok)
	}
	if env.router.CurrentPath() != auth.LoginPath {
		t.Errorf("router path = %q, want login", env.router.CurrentPath())
	}
	if got := env.deps.Session.PostLoginRoute(context.Background()); got != TodosPath {
		t.Errorf("return route = %q, want %q", got, TodosPath)
	}

	m, _ = update(t, m, NavigateMsg{Path: auth.LoginPath})
	if m.guard != nil || m.Route() != auth.LoginPath {
		t.Errorf("after logout Route() = %q", m.Route())
	}
}

func TestLogoutKeyIgnoredOnLoginPage(t *testing.T) {
	env := newTestEnv(t, auth.LoginPath)
	env.signIn(t)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: auth.LoginPath})

	update(t, m, keyCtrlL)
	if env.accessToken(t) == "" {
		t.Error("ctrl+l on the login page ended the session")
	}
}

func TestQuitKey(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: auth.HomePath})

	_, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestQuitKeyTypedIntoForm(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	env.signIn(t)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: TodosPath})
	runCheck(t, m.guard)

	m, _ = update(t, m, keyRunes("/"))
	if !m.capturing() {
		t.Fatal("search box not capturing keys")
	}
	m, _ = update(t, m, keyRunes("q"))
	if m.Route() != TodosPath {
		t.Errorf("Route() = %q, want todos", m.Route())
	}
	todos := m.guard.Child().(TodosScreen)
	if got := todos.search.Value(); got != "q" {
		t.Errorf("search = %q, want the typed q", got)
	}
}

func TestHelpOverlay(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	m, _ := update(t, NewRootModel(env.deps), tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, NavigateMsg{Path: auth.HomePath})

	m, _ = update(t, m, keyRunes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("? did not open help")
	}
	m, _ = update(t, m, keyEsc)
	if m.showHelp {
		t.Error("esc did not close help")
	}
}

func TestHeaderShowsSessionStatus(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	env.signIn(t)
	m, _ := update(t, NewRootModel(env.deps), NavigateMsg{Path: auth.LoginPath})

	msg := m.statusCmd()()
	m, _ = update(t, m, msg)
	if !strings.Contains(m.View(), "signed in") {
		t.Errorf("header missing signed-in state:\n%s", m.View())
	}
}

func TestDebugPanelCollectsEvents(t *testing.T) {
	env := newTestEnv(t, auth.HomePath)
	env.deps.Debug = true
	m := NewRootModel(env.deps)

	m, _ = update(t, m, DebugEventMsg{Line: `level=INFO msg="session ended" component=auth reason=user`})
	m, _ = update(t, m, NavigateMsg{Path: auth.LoginPath})

	lines := m.debug.Lines()
	if len(lines) != 2 {
		t.Fatalf("debug lines = %v, want 2", lines)
	}
	if !strings.Contains(lines[0], `auth "session ended"`) || !strings.Contains(lines[1], "nav  /login") {
		t.Errorf("debug lines = %v", lines)
	}
}
