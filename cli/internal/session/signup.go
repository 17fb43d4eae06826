// ABOUTME: Account registration with client-side validation
// ABOUTME: Rules are checked in order and the first violation is reported

package session

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/markalston/storefront/cli/internal/client"
)

// DefaultAvatar is sent for every new account
const DefaultAvatar = "https://api.lorem.space/image/face?w=150&h=150"

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
)

// ValidateSignup returns the first violated rule as a *ValidationError
func ValidateSignup(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "":
		return &ValidationError{Message: "All fields are required"}
	case !strings.Contains(email, "@"):
		return &ValidationError{Message: "Please enter a valid email address"}
	}
	return ValidatePassword(password)
}

// ValidatePassword checks the password rules alone
func ValidatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return &ValidationError{Message: "Password must be at least 8 characters long"}
	case !strings.ContainsAny(password, upperLetters):
		return &ValidationError{Message: "Password must contain at least one uppercase letter"}
	case !strings.ContainsAny(password, digits):
		return &ValidationError{Message: "Password must contain at least one number"}
	}
	return nil
}

// Signup validates and registers a new account. It does not log in.
func (c *Controller) Signup(ctx context.Context, name, email, password string) (*client.User, error) {
	if err := ValidateSignup(name, email, password); err != nil {
		return nil, err
	}

	user, err := c.api.CreateUser(ctx, client.NewUser{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Avatar:   DefaultAvatar,
	})
	if err != nil {
		c.logger.Info("signup rejected", "error", err)
		return nil, newSignupError(err)
	}
	c.logger.Info("account created", "user_id", user.ID)
	return user, nil
}
