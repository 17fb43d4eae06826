// ABOUTME: Client for the upstream catalog REST API
// ABOUTME: Fetches products and categories and proxies login, profile and signup

package services

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
	"time"

	"github.com/markalston/storefront/backend/models"
)

// ErrNoToken is returned when a login succeeds without an access token
var ErrNoToken = errors.New("login failed: no token")

// UpstreamError is a non-2xx response from the catalog API
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api returned status %d", e.Status)
	}
	return fmt.Sprintf("catalog api error (%d): %s", e.Status, e.Message)
}

// CatalogClient talks to the catalog API
type CatalogClient struct {
	baseURL string
	proxied bool
	client  *http.Client
}

// NewCatalogClient creates a client for baseURL. When allProxy is set,
// connections go through an SSH+SOCKS5 jump host.
func NewCatalogClient(baseURL string, timeout time.Duration, allProxy string) *CatalogClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	c := &CatalogClient{baseURL: baseURL}
	if allProxy != "" {
		if dial := createSOCKS5DialContextFunc(allProxy); dial != nil {
			transport.Proxy = nil
			transport.DialContext = dial
			c.proxied = true
		} else {
			slog.Warn("CATALOG_ALL_PROXY ignored, connecting directly")
		}
	}

	c.client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return c
}

// BaseURL returns the upstream base URL
func (c *CatalogClient) BaseURL() string {
	return c.baseURL
}

// Proxied reports whether requests go through the SOCKS5 jump host
func (c *CatalogClient) Proxied() bool {
	return c.proxied
}

// Products lists every product
func (c *CatalogClient) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsByCategory lists the products of one category
func (c *CatalogClient) ProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	q := url.Values{"categoryId": {strconv.Itoa(categoryID)}}
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products/?"+q.Encode(), "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product
func (c *CatalogClient) Product(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories lists every category
func (c *CatalogClient) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Login exchanges credentials for an access token
func (c *CatalogClient) Login(ctx context.Context, email, password string) (string, error) {
	in := models.LoginRequest{Email: email, Password: password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", in, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", ErrNoToken
	}
	return out.AccessToken, nil
}

// Profile fetches the user owning token
func (c *CatalogClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers an account
func (c *CatalogClient) CreateUser(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/users", "", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *CatalogClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("Catalog request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleErrorResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// handleRequestError converts context errors to readable messages
func (c *CatalogClient) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot reach catalog api at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses an upstream error body into an *UpstreamError
func handleErrorResponse(resp *http.Response) error {
	upErr := &UpstreamError{Status: resp.StatusCode}

	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return upErr
	}
	upErr.Message = decodeMessage(body.Message)
	return upErr
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
