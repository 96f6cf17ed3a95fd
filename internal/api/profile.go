package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/clive/todo-tui/internal/model"
)

// UpdateUserPayload is a partial profile update. Nil fields are not sent.
type UpdateUserPayload struct {
	FirstName     *string
	LastName      *string
	Address       *string
	ContactNumber *string
	Birthday      *string
	Bio           *string
	ProfileImage  *Upload
}

// Upload is a file part of a multipart request
type Upload struct {
	Filename string
	Content  io.Reader
}

// GetUser returns the authenticated user's profile
func (c *Client) GetUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Do(ctx, http.MethodGet, "users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser patches the profile as multipart/form-data
func (c *Client) UpdateUser(ctx context.Context, payload UpdateUserPayload) (*model.User, error) {
	body, contentType, err := payload.encode()
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := c.send(ctx, http.MethodPatch, "users/me/", body, contentType, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p UpdateUserPayload) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct {
		name  string
		value *string
	}{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"address", p.Address},
		{"contact_number", p.ContactNumber},
		{"birthday", p.Birthday},
		{"bio", p.Bio},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := w.WriteField(f.name, *f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if p.ProfileImage != nil && p.ProfileImage.Content != nil {
		part, err := w.CreateFormFile("profile_image", p.ProfileImage.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, p.ProfileImage.Content); err != nil {
			return nil, "", fmt.Errorf("copy profile image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
