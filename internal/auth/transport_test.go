package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`{"detail":"x"}`)),
			Request:    r,
		}, nil
	}
}

func TestTransportUnauthorized(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		url         string
		status      int
		noToken     bool
		wantCleared bool
		wantPath    string
		wantReturn  string
	}{
		{
			name:        "401 on protected call from todos",
			page:        "/todos",
			url:         "https://api.example.com/api/todos/?page=1",
			status:      http.StatusUnauthorized,
			wantCleared: true,
			wantPath:    LoginPath,
			wantReturn:  "/todos",
		},
		{
			name:        "401 with no token stored",
			page:        "/todos",
			url:         "https://api.example.com/api/todos/",
			status:      http.StatusUnauthorized,
			noToken:     true,
			wantCleared: true,
			wantPath:    LoginPath,
			wantReturn:  "/todos",
		},
		{
			name:       "401 from login endpoint on login page",
			page:       LoginPath,
			url:        "https://api.example.com/api/auth/login/",
			status:     http.StatusUnauthorized,
			wantPath:   LoginPath,
			wantReturn: "/",
		},
		{
			name:       "401 from signup endpoint",
			page:       "/todos",
			url:        "https://api.example.com/api/users/signup/",
			status:     http.StatusUnauthorized,
			wantPath:   "/todos",
			wantReturn: "/",
		},
		{
			name:       "401 while on register page",
			page:       RegisterPath,
			url:        "https://api.example.com/api/users/me/",
			status:     http.StatusUnauthorized,
			wantPath:   RegisterPath,
			wantReturn: "/",
		},
		{
			name:       "403 leaves session alone",
			page:       "/account",
			url:        "https://api.example.com/api/users/me/",
			status:     http.StatusForbidden,
			wantPath:   "/account",
			wantReturn: "/",
		},
		{
			name:       "success leaves session alone",
			page:       "/",
			url:        "https://api.example.com/api/todos/",
			status:     http.StatusOK,
			wantPath:   "/",
			wantReturn: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, _, nav := newTestManager(t, tt.page)
			if !tt.noToken {
				token := signedToken(t, time.Now().Add(time.Hour))
				m.Store().SetSession(ctx, token, "r")
			}

			client := &http.Client{Transport: NewTransport(respond(tt.status), m)}
			resp, err := client.Get(tt.url)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d passed through", resp.StatusCode, tt.status)
			}

			tok, _ := m.Store().AccessToken(ctx)
			if cleared := tok == ""; cleared != tt.wantCleared {
				t.Errorf("token cleared = %v, want %v", cleared, tt.wantCleared)
			}
			if nav.CurrentPath() != tt.wantPath {
				t.Errorf("path = %q, want %q", nav.CurrentPath(), tt.wantPath)
			}
			if got := m.PostLoginRoute(ctx); got != tt.wantReturn {
				t.Errorf("return route = %q, want %q", got, tt.wantReturn)
			}
		})
	}
}

func TestTransportAuthorizationHeader(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"valid token attached", "VALID", "Bearer "},
		{"expired token omitted", signedToken(t, now.Add(-time.Minute)), ""},
		{"malformed token omitted", "garbage", ""},
		{"no token", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, _, _ := newTestManager(t, "/todos")

			token := tt.token
			if token == "VALID" {
				token = signedToken(t, now.Add(time.Hour))
			}
			if token != "" {
				m.Store().SetSession(ctx, token, "r")
			}

			var got string
			base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
				got = r.Header.Get("Authorization")
				return respond(http.StatusOK)(r)
			})

			req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/api/todos/", nil)
			resp, err := NewTransport(base, m).RoundTrip(req)
			if err != nil {
				t.Fatalf("RoundTrip() error = %v", err)
			}
			resp.Body.Close()

			switch {
			case tt.want == "" && got != "":
				t.Errorf("Authorization = %q, want none", got)
			case tt.want != "" && got != tt.want+token:
				t.Errorf("Authorization = %q, want %q", got, tt.want+token)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("caller's request was mutated")
			}

			// An expired token is never cleared by the interceptor itself
			if token != "" {
				if stored, _ := m.Store().AccessToken(ctx); stored != token {
					t.Errorf("stored token = %q, want unchanged", stored)
				}
			}
		})
	}
}

func TestTransportPassesErrorsThrough(t *testing.T) {
	m, _, nav := newTestManager(t, "/todos")
	boom := errors.New("connection refused")
	base := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, boom })

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/api/todos/", nil)
	_, err := NewTransport(base, m).RoundTrip(req)
	if !errors.Is(err, boom) {
		t.Errorf("RoundTrip() error = %v, want %v", err, boom)
	}
	if len(nav.history()) != 0 {
		t.Errorf("navigated %v on transport error", nav.history())
	}
}

func TestTransportCanceledContextStillLogsOut(t *testing.T) {
	m, _, nav := newTestManager(t, "/todos")
	ctx, cancel := context.WithCancel(context.Background())

	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		cancel()
		return respond(http.StatusUnauthorized)(r)
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.example.com/api/todos/", nil)
	resp, err := NewTransport(base, m).RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if nav.CurrentPath() != LoginPath {
		t.Errorf("path = %q, want %q", nav.CurrentPath(), LoginPath)
	}
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/auth/login/", true},
		{"auth/login/", true},
		{"/api/auth/login", true},
		{"/api/users/signup/", true},
		{"/api/users/me/", false},
		{"/api/todos/", false},
		{"/api/users/change-password/", false},
		{"/api/notauth/login/", false},
	}
	for _, tt := range tests {
		if got := IsPublicEndpoint(tt.path); got != tt.want {
			t.Errorf("IsPublicEndpoint(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
