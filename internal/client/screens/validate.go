package screens

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the forms accept, in characters.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field error messages.
const (
	ErrEmailRequired       = "Email is required"
	ErrEmailInvalid        = "Please enter a valid email address"
	ErrPasswordRequired    = "Password is required"
	ErrPasswordTooShort    = "Password must be at least 6 characters"
	ErrConfirmRequired     = "Please confirm your password"
	ErrPasswordsDoNotMatch = "Passwords do not match"
)

// FieldErrors holds one message per form field; empty means valid.
type FieldErrors struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Valid reports whether no field has an error.
func (e FieldErrors) Valid() bool {
	return e.Email == "" && e.Password == "" && e.ConfirmPassword == ""
}

// ValidateCredentials checks the login form. The email is trimmed first.
func ValidateCredentials(email, password string) FieldErrors {
	var errs FieldErrors

	switch email = strings.TrimSpace(email); {
	case email == "":
		errs.Email = ErrEmailRequired
	case !emailPattern.MatchString(email):
		errs.Email = ErrEmailInvalid
	}

	switch {
	case password == "":
		errs.Password = ErrPasswordRequired
	case passwordTooShort(password):
		errs.Password = ErrPasswordTooShort
	}

	return errs
}

// passwordTooShort counts characters, not bytes.
func passwordTooShort(password string) bool {
	return utf8.RuneCountInString(password) < MinPasswordLength
}

// ValidateSignup checks the signup form, which also requires a matching confirmation.
func ValidateSignup(email, password, confirm string) FieldErrors {
	errs := ValidateCredentials(email, password)
	switch {
	case confirm == "":
		errs.ConfirmPassword = ErrConfirmRequired
	case password != confirm:
		errs.ConfirmPassword = ErrPasswordsDoNotMatch
	}
	return errs
}
