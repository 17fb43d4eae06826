// ABOUTME: HTTP client for the storefront catalog API
// ABOUTME: Attaches the persisted bearer token and drops it when the API answers 401

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public catalog API
	DefaultBaseURL = "https://api.escuelajs.co/api/v1"
	// DefaultTimeout bounds every request
	DefaultTimeout = 10 * time.Second
)

// TokenSource reads and removes the persisted session token
type TokenSource interface {
	Token() (string, error)
	RemoveToken() error
}

// Client is the API client shared by the session and catalog views
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	mu      sync.RWMutex
	headers http.Header
}

// New creates a new API client with the given base URL. tokens may be nil,
// in which case only the default headers authenticate requests.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens:  tokens,
		headers: make(http.Header),
	}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthToken sets the default Authorization header for later requests
func (c *Client) SetAuthToken(token string) {
	req := &http.Request{Header: make(http.Header)}
	(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set("Authorization", req.Header.Get("Authorization"))
}

// ClearAuthToken removes the default Authorization header
func (c *Client) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del("Authorization")
}

// AuthHeader returns the current default Authorization header value
func (c *Client) AuthHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get("Authorization")
}

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Status)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of err when it is an *APIError, else 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorBody covers both the catalog API's {"message": ...} and the
// backend's {"error": ..., "code": ...} shapes.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// User is the authenticated profile. Only the fields the views read are
// declared; Raw keeps the full record.
type User struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Avatar string          `json:"avatar"`
	Role   string          `json:"role"`
	Raw    json.RawMessage `json:"-"`
}

// NewUser is the signup payload
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// Category is a catalog category
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Product is a catalog product
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login calls POST /auth/login. The returned token may carry an empty
// AccessToken; callers decide what that means.
func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Profile calls GET /auth/profile
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &raw); err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("invalid profile response: %w", err)
	}
	u.Raw = raw
	return &u, nil
}

// CreateUser calls POST /users
func (c *Client) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", nu, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Products calls GET /products
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product calls GET /products/{id}
func (c *Client) Product(ctx context.Context, id int) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByCategory calls GET /products/?categoryId={id}
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int) ([]Product, error) {
	q := url.Values{"categoryId": []string{strconv.Itoa(categoryID)}}
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products/?"+q.Encode(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories calls GET /categories
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.prepare(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.dropToken()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from api: %w", err)
	}
	return nil
}

// prepare applies default headers, then the persisted token when one exists
func (c *Client) prepare(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	c.mu.RUnlock()

	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil {
		slog.Debug("reading persisted token failed", "error", err)
		return
	}
	if tok != "" {
		(&oauth2.Token{AccessToken: tok}).SetAuthHeader(req)
	}
}

// dropToken removes the persisted token. The caller decides where to go next.
func (c *Client) dropToken() {
	if c.tokens == nil {
		return
	}
	if err := c.tokens.RemoveToken(); err != nil {
		slog.Debug("removing persisted token failed", "error", err)
	}
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled: %w", err)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot connect to api at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses into an *APIError
func (c *Client) handleErrorResponse(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return apiErr
	}
	apiErr.Message = decodeMessage(body.Message)
	if apiErr.Message == "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

// decodeMessage accepts a string or a list of strings; lists keep the first entry
func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
