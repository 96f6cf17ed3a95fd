package api

import (
	"context"
	"net/http"
)

// TokenPair is the login response
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupPayload is the registration request body
type SignupPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ChangePasswordPayload is the change-password request body
type ChangePasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.Do(ctx, http.MethodPost, "auth/login/", LoginPayload{Email: email, Password: password}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Signup registers a new account
func (c *Client) Signup(ctx context.Context, payload SignupPayload) error {
	return c.Do(ctx, http.MethodPost, "users/signup/", payload, nil)
}

// ChangePassword changes the authenticated user's password
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.Do(ctx, http.MethodPost, "users/change-password/", ChangePasswordPayload{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}
