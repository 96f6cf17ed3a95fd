package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRouterNavigate(t *testing.T) {
	r := NewRouter("/")
	got := make(chan tea.Msg, 1)
	r.Attach(func(msg tea.Msg) { got <- msg })

	r.Navigate("/login")

	if path := r.CurrentPath(); path != "/login" {
		t.Errorf("CurrentPath() = %q, want /login", path)
	}
	select {
	case msg := <-got:
		if nav, ok := msg.(NavigateMsg); !ok || nav.Path != "/login" {
			t.Errorf("sent %#v, want NavigateMsg{/login}", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("NavigateMsg was not delivered")
	}
}

func TestRouterWithoutProgram(t *testing.T) {
	r := NewRouter("/todos")
	r.Navigate("/login")
	if path := r.CurrentPath(); path != "/login" {
		t.Errorf("CurrentPath() = %q, want /login", path)
	}

	r.Set("/account")
	if path := r.CurrentPath(); path != "/account" {
		t.Errorf("CurrentPath() = %q after Set, want /account", path)
	}
}

func TestGoCommands(t *testing.T) {
	if msg := Go("/todos")(); msg != (NavigateMsg{Path: "/todos"}) {
		t.Errorf("Go() = %#v", msg)
	}
	want := NavigateMsg{Path: "/login", Notice: "hi"}
	if msg := GoWithNotice("/login", "hi")(); msg != want {
		t.Errorf("GoWithNotice() = %#v", msg)
	}
}

func TestRouterDeliversInCallOrder(t *testing.T) {
	r := NewRouter("/")
	got := make(chan tea.Msg, 100)
	r.Attach(func(msg tea.Msg) {
		time.Sleep(time.Millisecond)
		got <- msg
	})

	paths := []string{"/todos", "/account", "/", "/login", "/register", "/todos"}
	for _, p := range paths {
		r.Navigate(p)
	}

	for i, want := range paths {
		select {
		case msg := <-got:
			if nav := msg.(NavigateMsg); nav.Path != want {
				t.Fatalf("message %d = %q, want %q", i, nav.Path, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("message %d not delivered", i)
		}
	}
	if path := r.CurrentPath(); path != "/todos" {
		t.Errorf("CurrentPath() = %q, want the last navigation", path)
	}
}
