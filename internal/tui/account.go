package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/model"
)

type accountMode int

const (
	accountView accountMode = iota
	accountEditProfile
	accountChangePassword
)

const (
	profileFirstName = iota
	profileLastName
	profileAddress
	profileContact
	profileBirthday
	profileBio
	profileImage
)

const (
	passwordOld = iota
	passwordNew
	passwordConfirm
)

type profileSavedMsg struct {
	user *model.User
	err  error
}

type passwordChangedMsg struct {
	err error
}

// AccountScreen shows and edits the user's profile and password
type AccountScreen struct {
	deps    *Deps
	keys    KeyMap
	mode    accountMode
	user    *model.User
	form    form
	loading bool
	err     string
	notice  string
}

// NewAccountScreen creates the account screen
func NewAccountScreen(deps *Deps) AccountScreen {
	return AccountScreen{deps: deps, keys: DefaultKeyMap(), loading: true}
}

func (s AccountScreen) Capturing() bool {
	return s.mode != accountView
}

func (s AccountScreen) Init() tea.Cmd {
	return loadUserCmd(s.deps.Client)
}

func (s AccountScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case userLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.user = msg.user

	case profileSavedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.user = msg.user
		s.mode = accountView
		s.notice = "Profile updated"

	case passwordChangedMsg:
		s.loading = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		s.mode = accountView
		s.notice = "Password changed"

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		if s.mode == accountView {
			return s.updateView(msg)
		}
		switch {
		case key.Matches(msg, s.keys.Escape):
			s.mode = accountView
			s.err = ""
			return s, nil
		case key.Matches(msg, s.keys.Enter):
			if s.mode == accountEditProfile {
				return s.submitProfile()
			}
			return s.submitPassword()
		}
	}

	if s.mode != accountView {
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s AccountScreen) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Edit):
		if s.user == nil {
			return s, nil
		}
		u := s.user
		s.form = newForm(s.keys,
			field{label: "First name", value: u.FirstName, charLimit: 64},
			field{label: "Last name", value: u.LastName, charLimit: 64},
			field{label: "Address", value: u.Address, charLimit: 200},
			field{label: "Contact number", value: u.ContactNumber, charLimit: 32},
			field{label: "Birthday", placeholder: model.DateLayout, value: u.Birthday, charLimit: 10},
			field{label: "Bio", value: u.Bio, charLimit: 500},
			field{label: "Profile image", placeholder: "path to image file (optional)", charLimit: 512},
		)
		s.mode = accountEditProfile
		s.err, s.notice = "", ""
		return s, textinput.Blink

	case key.Matches(msg, s.keys.Password):
		s.form = newForm(s.keys,
			field{label: "Current password", secret: true, charLimit: 128},
			field{label: "New password", secret: true, charLimit: 128},
			field{label: "Confirm password", secret: true, charLimit: 128},
		)
		s.mode = accountChangePassword
		s.err, s.notice = "", ""
		return s, textinput.Blink

	case key.Matches(msg, s.keys.Refresh):
		s.loading = true
		return s, s.Init()
	}
	return s, nil
}

func (s AccountScreen) submitProfile() (tea.Model, tea.Cmd) {
	str := func(i int) *string {
		v := s.form.Value(i)
		return &v
	}
	payload := api.UpdateUserPayload{
		FirstName:     str(profileFirstName),
		LastName:      str(profileLastName),
		Address:       str(profileAddress),
		ContactNumber: str(profileContact),
		Birthday:      str(profileBirthday),
		Bio:           str(profileBio),
	}
	if *payload.Birthday == "" {
		payload.Birthday = nil
	}
	imagePath := s.form.Value(profileImage)

	s.loading = true
	s.err = ""
	client := s.deps.Client
	return s, func() tea.Msg {
		if imagePath != "" {
			f, err := os.Open(imagePath)
			if err != nil {
				return profileSavedMsg{err: fmt.Errorf("open profile image: %w", err)}
			}
			defer f.Close()
			payload.ProfileImage = &api.Upload{Filename: filepath.Base(imagePath), Content: f}
		}

		ctx, cancel := commandContext()
		defer cancel()
		user, err := client.UpdateUser(ctx, payload)
		return profileSavedMsg{user: user, err: err}
	}
}

func (s AccountScreen) submitPassword() (tea.Model, tea.Cmd) {
	oldPassword := s.form.Value(passwordOld)
	newPassword := s.form.Value(passwordNew)
	switch {
	case oldPassword == "" || newPassword == "":
		s.err = "Both passwords are required"
		return s, nil
	case newPassword != s.form.Value(passwordConfirm):
		s.err = "New passwords do not match"
		return s, nil
	}

	s.loading = true
	s.err = ""
	client := s.deps.Client
	return s, func() tea.Msg {
		ctx, cancel := commandContext()
		defer cancel()
		return passwordChangedMsg{err: client.ChangePassword(ctx, oldPassword, newPassword)}
	}
}

func (s AccountScreen) View() string {
	var b strings.Builder

	switch s.mode {
	case accountEditProfile:
		b.WriteString(PanelTitleStyle.Render("Edit profile") + "\n\n")
		b.WriteString(s.form.View() + "\n\n")
		b.WriteString(DimStyle.Render("enter save · tab next field · esc cancel"))
	case accountChangePassword:
		b.WriteString(PanelTitleStyle.Render("Change password") + "\n\n")
		b.WriteString(s.form.View() + "\n\n")
		b.WriteString(DimStyle.Render("enter save · tab next field · esc cancel"))
	default:
		b.WriteString(PanelTitleStyle.Render("Account") + "\n\n")
		if s.user != nil {
			b.WriteString(profileView(s.user) + "\n\n")
		} else if s.loading {
			b.WriteString(DimStyle.Render("Loading profile...") + "\n\n")
		}
		b.WriteString(DimStyle.Render("e edit profile · p change password · r refresh"))
	}

	switch {
	case s.loading && s.mode != accountView:
		b.WriteString("\n" + WarningStyle.Render("Saving..."))
	case s.err != "":
		b.WriteString("\n" + ErrorStyle.Render(s.err))
	case s.notice != "":
		b.WriteString("\n" + SuccessStyle.Render(s.notice))
	}
	return PanelStyle.Render(b.String())
}

func profileView(u *model.User) string {
	rows := []struct{ label, value string }{
		{"Name", u.DisplayName()},
		{"Email", u.Email},
		{"Address", u.Address},
		{"Contact number", u.ContactNumber},
		{"Birthday", u.Birthday},
		{"Bio", u.Bio},
	}
	if u.ProfileImage != nil {
		rows = append(rows, struct{ label, value string }{"Profile image", *u.ProfileImage})
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		v := r.value
		if v == "" {
			v = DimStyle.Render("-")
		}
		lines[i] = LabelStyle.Render(r.label) + v
	}
	return strings.Join(lines, "\n")
}
