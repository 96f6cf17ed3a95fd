package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// PublicEndpoints are API paths whose 401 means "bad credentials", not
// "session gone". They are matched as suffixes of the request path.
var PublicEndpoints = []string{
	"auth/login/",
	"users/signup/",
}

// IsPublicEndpoint reports whether an API request path targets one of the
// PublicEndpoints.
func IsPublicEndpoint(path string) bool {
	p := "/" + strings.Trim(path, "/") + "/"
	for _, ep := range PublicEndpoints {
		if strings.HasSuffix(p, "/"+ep) {
			return true
		}
	}
	return false
}

// Transport attaches the session's bearer token to outgoing requests and ends
// the session when a protected call comes back 401.
type Transport struct {
	// Base performs the request. http.DefaultTransport when nil.
	Base    http.RoundTripper
	Manager *Manager
}

// NewTransport wraps base with session handling
func NewTransport(base http.RoundTripper, m *Manager) *Transport {
	return &Transport{Base: base, Manager: m}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper. The response and error from the
// base transport are always returned unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	// An expired token is left off; the guard's sweep ends that session
	if token := t.Manager.validAccessToken(ctx); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(out)
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.handleUnauthorized(context.WithoutCancel(ctx), req)
	}
	return resp, nil
}

func (t *Transport) handleUnauthorized(ctx context.Context, req *http.Request) {
	m := t.Manager
	if IsPublicEndpoint(req.URL.Path) {
		m.logger.Debug("401 from auth endpoint, keeping session", "path", req.URL.Path)
		return
	}

	current := m.currentPath()
	if IsPublicPath(current) {
		m.logger.Debug("401 while on public page, keeping session", "path", req.URL.Path, "page", current)
		return
	}

	if err := m.logout(ctx, current, "unauthorized response"); err != nil {
		m.logger.Error("logout after 401", "error", err, "path", req.URL.Path)
	}
}
