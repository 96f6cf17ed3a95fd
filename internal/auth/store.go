package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/clive/todo-tui/internal/kv"
)

// Persisted keys
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyReturnRoute     = "return_route"
	KeyRememberedEmail = "remembered_email"
)

// Routes the session layer knows about
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
)

// IsPublicPath reports whether path is reachable without a session.
func IsPublicPath(path string) bool {
	return path == LoginPath || path == RegisterPath
}

// Store reads and writes session fields in a kv.Store.
type Store struct {
	kv kv.Store
}

// NewStore wraps backend. A nil backend yields a store that reports
// itself unavailable and holds nothing.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// Available reports whether the store has a backend to persist into.
func (s *Store) Available() bool {
	return s != nil && s.kv != nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	if !s.Available() {
		return "", nil
	}
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// AccessToken returns the stored access token, or "" if there is none.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" if there is none.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// SetSession replaces both tokens in a single backend write.
func (s *Store) SetSession(ctx context.Context, access, refresh string) error {
	if !s.Available() {
		return errors.New("session storage unavailable")
	}
	err := s.kv.Set(ctx, map[string]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// ClearSession removes both tokens. The return route is left alone.
func (s *Store) ClearSession(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	if err := s.kv.Remove(ctx, KeyAccessToken, KeyRefreshToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SetReturnRoute records where to go after the next login. The login page
// itself is never recorded.
func (s *Store) SetReturnRoute(ctx context.Context, path string) error {
	if !s.Available() || path == "" || path == LoginPath {
		return nil
	}
	if err := s.kv.Set(ctx, map[string]string{KeyReturnRoute: path}); err != nil {
		return fmt.Errorf("store return route: %w", err)
	}
	return nil
}

// TakeReturnRoute returns the recorded route, or HomePath when none is
// recorded, and deletes it.
func (s *Store) TakeReturnRoute(ctx context.Context) (string, error) {
	route, err := s.get(ctx, KeyReturnRoute)
	if err != nil {
		return HomePath, err
	}
	if route == "" {
		return HomePath, nil
	}
	if err := s.kv.Remove(ctx, KeyReturnRoute); err != nil {
		return route, fmt.Errorf("consume return route: %w", err)
	}
	return route, nil
}

// RememberEmail stores the login email for prefill. Passwords are never stored.
func (s *Store) RememberEmail(ctx context.Context, email string) error {
	if !s.Available() || email == "" {
		return nil
	}
	if err := s.kv.Set(ctx, map[string]string{KeyRememberedEmail: email}); err != nil {
		return fmt.Errorf("store email: %w", err)
	}
	return nil
}

// RememberedEmail returns the stored login email, or "".
func (s *Store) RememberedEmail(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRememberedEmail)
}

// ForgetEmail drops the stored login email.
func (s *Store) ForgetEmail(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	if err := s.kv.Remove(ctx, KeyRememberedEmail); err != nil {
		return fmt.Errorf("forget email: %w", err)
	}
	return nil
}
