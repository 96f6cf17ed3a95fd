package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Navigator exposes the current route and moves the user to another one.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Manager combines the token store, the expiry check and navigation into the
// session operations the rest of the client uses.
type Manager struct {
	store  *Store
	nav    Navigator
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a session manager. nav may be nil when there is no
// route to redirect, in which case logout only clears state.
func NewManager(store *Store, nav Navigator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		store:  store,
		nav:    nav,
		logger: logger,
		now:    time.Now,
	}
}

// Store returns the underlying token store
func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) currentPath() string {
	if m.nav == nil {
		return ""
	}
	return m.nav.CurrentPath()
}

// IsAuthenticated reports whether a stored access token exists and has not
// expired. It never modifies the session.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	if !m.store.Available() {
		return false
	}
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		m.logger.Warn("read access token", "error", err)
		return false
	}
	if token == "" {
		return false
	}
	return !IsExpiredAt(token, m.now())
}

// validAccessToken returns the stored access token when it is present and
// unexpired, otherwise "".
func (m *Manager) validAccessToken(ctx context.Context) string {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		m.logger.Warn("read access token", "error", err)
		return ""
	}
	if token == "" || IsExpiredAt(token, m.now()) {
		return ""
	}
	return token
}

// Status describes the session for display.
type Status struct {
	Authenticated bool
	ExpiresAt     time.Time // Zero when there is no decodable token
}

// Status reports the session state and the access token's expiry.
func (m *Manager) Status(ctx context.Context) Status {
	token, err := m.store.AccessToken(ctx)
	if err != nil || token == "" {
		return Status{}
	}
	exp, err := ExpiresAt(token)
	if err != nil {
		return Status{}
	}
	return Status{
		Authenticated: !IsExpiredAt(token, m.now()),
		ExpiresAt:     exp,
	}
}

// Login stores a freshly issued token pair, replacing any previous session.
func (m *Manager) Login(ctx context.Context, access, refresh string) error {
	if err := m.store.SetSession(ctx, access, refresh); err != nil {
		return err
	}
	attrs := []any{}
	if exp, err := ExpiresAt(access); err == nil {
		attrs = append(attrs, "expires_at", exp.UTC().Format(time.RFC3339))
	}
	m.logger.Info("session started", attrs...)
	return nil
}

// PostLoginRoute consumes the recorded return route, defaulting to HomePath.
func (m *Manager) PostLoginRoute(ctx context.Context) string {
	route, err := m.store.TakeReturnRoute(ctx)
	if err != nil {
		m.logger.Warn("take return route", "error", err)
	}
	return route
}

// Logout ends the session. Unless the user is already on a public page, the
// route (currentRoute, or the current path when empty) is recorded for after
// the next login and the user is sent to the login page.
func (m *Manager) Logout(ctx context.Context, currentRoute string) error {
	return m.logout(ctx, currentRoute, "user")
}

func (m *Manager) logout(ctx context.Context, currentRoute, reason string) error {
	current := m.currentPath()
	onPublic := IsPublicPath(current)

	var errs []error
	if !onPublic {
		route := currentRoute
		if route == "" {
			route = current
		}
		if err := m.store.SetReturnRoute(ctx, route); err != nil {
			errs = append(errs, err)
		}
	}

	// Clear before navigating so in-flight requests cannot pick up the old token
	if err := m.store.ClearSession(ctx); err != nil {
		errs = append(errs, err)
	}

	m.logger.Info("session ended", "reason", reason, "path", current)

	if !onPublic && m.nav != nil {
		m.nav.Navigate(LoginPath)
	}
	return errors.Join(errs...)
}

// CheckAndLogout is the expiry sweep: if a stored access token has expired,
// the session is ended. It reports whether a logout happened.
func (m *Manager) CheckAndLogout(ctx context.Context) (bool, error) {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	if token == "" || !IsExpiredAt(token, m.now()) {
		return false, nil
	}
	return true, m.logout(ctx, "", "access token expired")
}

// Verify is one route-guard pass: the expiry sweep, then the authenticated
// check. When unauthenticated away from the login page, the current path is
// recorded as the return route and the user is sent to login.
func (m *Manager) Verify(ctx context.Context) bool {
	if _, err := m.CheckAndLogout(ctx); err != nil {
		m.logger.Warn("expiry sweep", "error", err)
	}

	if m.IsAuthenticated(ctx) {
		return true
	}

	current := m.currentPath()
	if current != LoginPath {
		if err := m.store.SetReturnRoute(ctx, current); err != nil {
			m.logger.Warn("record return route", "error", err)
		}
		m.logger.Info("unauthenticated, redirecting to login", "path", current)
		if m.nav != nil {
			m.nav.Navigate(LoginPath)
		}
	}
	return false
}
