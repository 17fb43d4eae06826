// ABOUTME: Display errors for login and signup failures
// ABOUTME: Maps API status codes to the messages shown to shoppers

package session

import (
	"errors"
	"net/http"

	"github.com/markalston/storefront/cli/internal/client"
)

var loginMessages = map[int]string{
	401: "Incorrect email or password",
	404: "Account not found",
	429: "Too many login attempts. Please try again later",
	500: "Server error. Please try again in a moment",
}

const (
	loginStatusDefault = "Login failed: Please check your internet connection and try again"
	loginNoResponse    = "Login failed: An error occurred. Please try again"
)

var signupMessages = map[int]string{
	400: "Invalid data provided. Please check your information",
	409: "Email is already registered",
	422: "Please provide valid email and password",
	500: "Server error. Please try again in a moment",
}

const (
	signupStatusDefault = "Registration failed. Please check your connection and try again"
	signupNoResponse    = "Unable to complete registration. Please try again"
)

// LoginError is a rejected login. Status is 0 when no response arrived.
type LoginError struct {
	Status  int
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

func newLoginError(err error) *LoginError {
	status, msg := displayMessage(err, loginMessages, loginStatusDefault, loginNoResponse)
	return &LoginError{Status: status, Message: msg, Err: err}
}

// SignupError is a rejected registration. Status is 0 when no response arrived.
type SignupError struct {
	Status  int
	Message string
	Err     error
}

func (e *SignupError) Error() string { return e.Message }
func (e *SignupError) Unwrap() error { return e.Err }

func newSignupError(err error) *SignupError {
	status, msg := displayMessage(err, signupMessages, signupStatusDefault, signupNoResponse)
	return &SignupError{Status: status, Message: msg, Err: err}
}

// displayMessage picks the server message, then the canned message for the
// status, then the fallback for the status or for no response at all. A
// server message that only repeats the status text counts as absent.
func displayMessage(err error, canned map[int]string, statusDefault, noResponse string) (int, string) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return 0, noResponse
	}
	if apiErr.Message != "" && apiErr.Message != http.StatusText(apiErr.Status) {
		return apiErr.Status, apiErr.Message
	}
	if msg, ok := canned[apiErr.Status]; ok {
		return apiErr.Status, msg
	}
	return apiErr.Status, statusDefault
}

// ValidationError is the first violated signup rule
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
