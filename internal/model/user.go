package model

import "strings"

// User represents the authenticated user's profile
type User struct {
	ID            int     `json:"id"`
	Email         string  `json:"email"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Address       string  `json:"address"`
	ContactNumber string  `json:"contact_number"`
	Birthday      string  `json:"birthday"`
	ProfileImage  *string `json:"profile_image"`
	Bio           string  `json:"bio"`
}

// DisplayName returns the full name, falling back to the email
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
