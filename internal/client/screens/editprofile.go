package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/session"
	"github.com/easyeats/easyeats/internal/logging"
)

// EditProfileScreen edits the signed-in user's profile and password.
type EditProfileScreen struct {
	Provider session.Provider
	Profiles ProfileAPI
	Nav      Navigator
	Alerts   Alerter
	BaseURL  string

	FirstName    string
	LastName     string
	Email        string
	Location     string
	Bio          string
	ProfileImage string
	// NewPicture holds JPEG bytes picked since the last save.
	NewPicture []byte

	CurrentPassword string
	NewPassword     string
	ConfirmPassword string

	Loading bool
}

// Focus reloads the form from the backend.
func (s *EditProfileScreen) Focus(ctx context.Context) {
	user, ok := s.Provider.CurrentUser(ctx)
	if !ok {
		logging.FromContext(ctx).Warn("edit profile focus without a signed-in user")
		return
	}

	profile, err := s.Profiles.Get(ctx, user.UID)
	if err != nil {
		logging.FromContext(ctx).Error("fetch profile failed", "error", err)
		s.Alerts.Alert(ctx, "Error", requestFailure("Failed to fetch profile", err))
		return
	}

	s.FirstName = profile.User.FirstName
	s.LastName = profile.User.LastName
	s.Email = profile.User.Email
	if s.Email == "" {
		s.Email = profile.Email
	}
	s.Location = profile.Location
	s.Bio = profile.Bio
	s.ProfileImage = ResolveImageURL(s.BaseURL, deref(profile.ProfilePicture))
	s.NewPicture = nil
}

// Save sends the form as a multipart partial update and returns to the
// previous screen on success.
func (s *EditProfileScreen) Save(ctx context.Context) bool {
	user, ok := s.Provider.CurrentUser(ctx)
	if !ok {
		s.Alerts.Alert(ctx, "Error", "You must be signed in to edit your profile.")
		return false
	}

	form := httpclient.NewMultipart().
		Field("bio", s.Bio).
		Field("location", s.Location).
		Field("user.first_name", s.FirstName).
		Field("user.last_name", s.LastName).
		Field("user.email", s.Email)
	if len(s.NewPicture) > 0 {
		form.File("profile_picture", "profile.jpg", "image/jpeg", s.NewPicture)
	}

	s.Loading = true
	defer func() { s.Loading = false }()

	profile, err := s.Profiles.Update(ctx, user.UID, form)
	if err != nil {
		logging.FromContext(ctx).Error("update profile failed", "error", err)
		s.Alerts.Alert(ctx, "Error", requestFailure("Failed to update profile", err))
		return false
	}

	s.ProfileImage = ResolveImageURL(s.BaseURL, deref(profile.ProfilePicture))
	s.NewPicture = nil
	s.Alerts.Alert(ctx, "Success", "Profile updated successfully!")
	s.Nav.GoBack(ctx)
	return true
}

// ChangePassword validates the new password pair and applies it through the
// provider when it supports password updates.
func (s *EditProfileScreen) ChangePassword(ctx context.Context) bool {
	switch {
	case s.NewPassword != s.ConfirmPassword:
		s.Alerts.Alert(ctx, "Error", "New passwords do not match")
		return false
	case passwordTooShort(s.NewPassword):
		s.Alerts.Alert(ctx, "Error", "Password must be at least 6 characters")
		return false
	}

	updater, ok := s.Provider.(session.PasswordUpdater)
	if !ok {
		s.Alerts.Alert(ctx, "Error", "Password changes are not available for this account.")
		return false
	}

	if err := updater.UpdatePassword(ctx, s.NewPassword); err != nil {
		logging.FromContext(ctx).Warn("password update failed", "code", session.CodeOf(err), "error", err)
		msg := "Failed to change password. Please try again."
		switch session.CodeOf(err) {
		case session.CodeRequiresRecentLogin, session.CodeTokenExpired:
			msg = "Please log in again before changing your password."
		case session.CodeWeakPassword:
			msg = "Password must be at least 6 characters"
		case session.CodeNetwork:
			msg = MessageNetwork
		}
		s.Alerts.Alert(ctx, "Error", msg)
		return false
	}

	s.CurrentPassword, s.NewPassword, s.ConfirmPassword = "", "", ""
	s.Alerts.Alert(ctx, "Success", "Password changed successfully!")
	return true
}

// requestFailure renders a facade error the way the profile screens report it.
func requestFailure(prefix string, err error) string {
	var herr *httpclient.Error
	if !errors.As(err, &herr) {
		return "An unexpected error occurred"
	}
	switch herr.Kind {
	case httpclient.KindResponse:
		msg := strings.TrimSpace(herr.Message())
		if msg == "" {
			msg = "Unknown error"
		}
		return fmt.Sprintf("%s: %s", prefix, msg)
	case httpclient.KindNetwork:
		return "Could not connect to the server. Please check your internet connection."
	default:
		return fmt.Sprintf("%s: %v", prefix, herr.Err)
	}
}
