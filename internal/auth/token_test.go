package auth

import (
	"encoding/base64"
	"testing"
	"time"
)

// rawToken builds an unsigned three-part token with the given JSON payload
func rawToken(payload string) string {
	return withHeader(`{"alg":"HS256","typ":"JWT"}`, payload)
}

// withHeader is rawToken with an arbitrary header segment
func withHeader(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." +
		enc.EncodeToString([]byte(payload)) + ".c2lnbmF0dXJl"
}

func TestIsExpiredAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name  string
		token string
		now   time.Time
		want  bool
	}{
		{"exp in the future", rawToken(`{"exp":1700000060}`), now, false},
		{"exp in the past", rawToken(`{"exp":1699999940}`), now, true},
		{"exp equals now", rawToken(`{"exp":1700000000}`), now, false},
		{"one millisecond past exp", rawToken(`{"exp":1700000000}`), now.Add(time.Millisecond), true},
		{"signed token", signedToken(t, now.Add(time.Minute)), now, false},
		{"unknown alg", withHeader(`{"alg":"XY999"}`, `{"exp":1700000060}`), now, false},
		{"header without alg", withHeader(`{"typ":"JWT"}`, `{"exp":1700000060}`), now, false},
		{"undecodable header", "!!!." + base64.RawURLEncoding.EncodeToString([]byte(`{"exp":1700000060}`)) + ".sig", now, false},
		{"fractional exp still valid", rawToken(`{"exp":1700000000.9}`), now.Add(500 * time.Millisecond), false},
		{"fractional exp passed", rawToken(`{"exp":1700000000.9}`), now.Add(901 * time.Millisecond), true},
		{"numeric string exp", rawToken(`{"exp":"1700000060"}`), now, false},
		{"null exp", rawToken(`{"exp":null}`), now, true},
		{"four segments", rawToken(`{"exp":1700000060}`) + ".x", now, true},
		{"missing exp", rawToken(`{"sub":"ada"}`), now, true},
		{"non-numeric exp", rawToken(`{"exp":"soon"}`), now, true},
		{"payload not json", "eyJhbGciOiJIUzI1NiJ9.bm90IGpzb24.c2ln", now, true},
		{"two segments", "eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjF9", now, true},
		{"garbage", "not-a-token", now, true},
		{"empty", "", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpiredAt(tt.token, tt.now); got != tt.want {
				t.Errorf("IsExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExpired(t *testing.T) {
	if IsExpired(signedToken(t, time.Now().Add(time.Hour))) {
		t.Error("IsExpired(token valid for an hour) = true")
	}
	if !IsExpired(signedToken(t, time.Now().Add(-time.Hour))) {
		t.Error("IsExpired(token expired an hour ago) = false")
	}
}

func TestExpiresAt(t *testing.T) {
	exp, err := ExpiresAt(rawToken(`{"exp":1700000000}`))
	if err != nil {
		t.Fatalf("ExpiresAt() error = %v", err)
	}
	if !exp.Equal(time.Unix(1_700_000_000, 0)) {
		t.Errorf("ExpiresAt() = %v", exp)
	}

	if _, err := ExpiresAt(rawToken(`{}`)); err != ErrNoExpiry {
		t.Errorf("ExpiresAt(no exp) error = %v, want ErrNoExpiry", err)
	}
	exp, err = ExpiresAt(rawToken(`{"exp":1700000000.25}`))
	if err != nil || !exp.Equal(time.UnixMilli(1_700_000_000_250)) {
		t.Errorf("ExpiresAt(fractional) = %v, %v", exp, err)
	}

	if _, err := ExpiresAt("x.y.z"); err == nil {
		t.Error("ExpiresAt(garbage) error = nil")
	}
}
