package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clive/todo-tui/internal/kv"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type fakeNav struct {
	mu        sync.Mutex
	path      string
	navigated []string
}

func (n *fakeNav) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *fakeNav) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.navigated = append(n.navigated, path)
}

func (n *fakeNav) history() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.navigated...)
}

// failingKV errors on every call
type failingKV struct{}

var errBackend = errors.New("backend down")

func (failingKV) Get(context.Context, string) (string, error) { return "", errBackend }
func (failingKV) Set(context.Context, map[string]string) error { return errBackend }
func (failingKV) Remove(context.Context, ...string) error { return errBackend }
func (failingKV) Close() error { return nil }

func newTestManager(t *testing.T, page string) (*Manager, *kv.Memory, *fakeNav) {
	t.Helper()
	mem := kv.NewMemory()
	nav := &fakeNav{path: page}
	return NewManager(NewStore(mem), nav, nil), mem, nav
}

type recordingNav struct {
	path       string
	onNavigate func()
}

func (n *recordingNav) CurrentPath() string { return n.path }

func (n *recordingNav) Navigate(path string) {
	if n.onNavigate != nil {
		n.onNavigate()
	}
	n.path = path
}

func memWithSession(t *testing.T) *kv.Memory {
	t.Helper()
	mem := kv.NewMemory()
	err := mem.Set(context.Background(), map[string]string{
		KeyAccessToken:  signedToken(t, time.Now().Add(time.Hour)),
		KeyRefreshToken: "refresh",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return mem
}
