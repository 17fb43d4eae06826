// ABOUTME: Auth and page request/response models for the BFF
// ABOUTME: Defines login, signup and page-prop API contracts

package models

// DefaultAvatar is attached to every account created through the backend
const DefaultAvatar = "https://api.lorem.space/image/face?w=150&h=150"

// LoginRequest represents credentials for authentication
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the result of a login attempt.
// The token itself is only ever sent as the signed cookie.
type LoginResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SignupRequest is the account creation payload sent upstream
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// PageProps is the server-rendered state for a page
type PageProps struct {
	Path          string     `json:"path"`
	Authenticated bool       `json:"authenticated"`
	User          *User      `json:"user,omitempty"`
	Products      []Product  `json:"products,omitempty"`
	Categories    []Category `json:"categories,omitempty"`
}
