package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/api/apitest"
	"github.com/clive/todo-tui/internal/auth"
	"github.com/clive/todo-tui/internal/kv"
)

const testEmail = "ada@example.com"

// testEnv is a full client stack against a fake API server
type testEnv struct {
	deps   *Deps
	srv    *apitest.Server
	router *Router
	store  *kv.Memory
}

func newTestEnv(t *testing.T, path string) *testEnv {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser(testEmail, "secret")

	mem := kv.NewMemory()
	router := NewRouter(path)
	session := auth.NewManager(auth.NewStore(mem), router, nil)
	client, err := api.NewClient(api.Options{
		BaseURL:   srv.APIURL(),
		Transport: auth.NewTransport(nil, session),
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	return &testEnv{
		deps: &Deps{
			Client:        client,
			Session:       session,
			Router:        router,
			GuardInterval: time.Minute,
		},
		srv:    srv,
		router: router,
		store:  mem,
	}
}

// signIn stores a valid session for testEmail
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	token := apitest.SignToken(testEmail, time.Now().Add(time.Hour))
	if err := e.deps.Session.Login(context.Background(), token, "refresh"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

func (e *testEnv) accessToken(t *testing.T) string {
	t.Helper()
	tok, err := e.deps.Session.Store().AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	return tok
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlL = tea.KeyMsg{Type: tea.KeyCtrlL}
)

// stubScreen records what a guard forwards to it
type stubScreen struct {
	inits int
	keys  int
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		s.keys++
	}
	return s, nil
}

func (s *stubScreen) View() string { return "protected content" }

func signExpired(t *testing.T) string {
	t.Helper()
	return apitest.SignToken(testEmail, time.Now().Add(-time.Minute))
}
