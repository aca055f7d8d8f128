package screens

import (
	"errors"

	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/session"
)

// MessageNetwork is shown when the backend cannot be reached.
const MessageNetwork = "Could not connect to the server. Please check your internet connection and try again."

var loginMessages = map[string]string{
	session.CodeInvalidEmail:      "Please enter a valid email address.",
	session.CodeInvalidCredential: "Invalid email or password.",
	session.CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
	session.CodeUserNotFound:      "No account found with this email.",
	session.CodeWrongPassword:     "Incorrect password.",
}

var signupMessages = map[string]string{
	session.CodeInvalidEmail:    "Please enter a valid email address.",
	session.CodeEmailInUse:      "An account with this email already exists.",
	session.CodeWeakPassword:    "Password must be at least 6 characters.",
	session.CodeTooManyRequests: "Too many failed attempts. Please try again later.",
}

// LoginErrorMessage maps an identity provider failure to dialog text.
func LoginErrorMessage(err error) string {
	if msg, ok := loginMessages[session.CodeOf(err)]; ok {
		return msg
	}
	return "An error occurred during login. Please try again."
}

// SignupErrorMessage maps an identity provider failure during signup to dialog text.
func SignupErrorMessage(err error) string {
	if msg, ok := signupMessages[session.CodeOf(err)]; ok {
		return msg
	}
	if session.CodeOf(err) == session.CodeNetwork {
		return MessageNetwork
	}
	return "An error occurred during signup. Please try again."
}

// backendMessage picks dialog text for a facade failure: the server's own
// message for response errors, a connectivity message for network errors, and
// fallback otherwise.
func backendMessage(err error, fallback string) string {
	var herr *httpclient.Error
	if !errors.As(err, &herr) {
		return fallback
	}
	switch herr.Kind {
	case httpclient.KindNetwork:
		return MessageNetwork
	case httpclient.KindResponse:
		if len(herr.Body) > 0 {
			return herr.Message()
		}
	}
	return fallback
}
