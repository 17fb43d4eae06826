// ABOUTME: Data models for catalog records and backend API responses
// ABOUTME: JSON-serializable structures shared by the upstream client and handlers

package models

import "time"

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

// User is the profile returned by the catalog's auth endpoints.
// Only the fields the storefront reads are declared.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HealthResponse reports the backend and upstream status
type HealthResponse struct {
	Status     string    `json:"status"`
	CatalogAPI string    `json:"catalog_api"`
	Proxy      bool      `json:"proxy"`
	CacheItems int       `json:"cache_items"`
	Timestamp  time.Time `json:"timestamp"`
}
