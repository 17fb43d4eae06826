// ABOUTME: Fake catalog API shared by the command tests
// ABOUTME: Serves products, categories, auth and users over httptest

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/markalston/storefront/cli/internal/client"
)

const testToken = "test-access-token"

var testProducts = []client.Product{
	{ID: 1, Title: "Classic Tee", Price: 20, Images: []string{"https://img/tee.png"}, Category: client.Category{ID: 1, Name: "Clothessss"}},
	{ID: 2, Title: "Wireless Mouse", Price: 99.99, Category: client.Category{ID: 2, Name: "Electronics"}},
	{ID: 3, Title: "Oak Chair", Price: 150, Category: client.Category{ID: 3, Name: "Furniture"}},
}

// fakeShop is a minimal catalog API. Only email "jane@mail.com" with
// password "Secret123" can log in.
type fakeShop struct {
	mu          sync.Mutex
	createdUser *client.NewUser
	authHeaders []string
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/products" || r.URL.Path == "/products/":
		products := testProducts
		if cat := r.URL.Query().Get("categoryId"); cat != "" {
			products = nil
			for _, p := range testProducts {
				if cat == "2" && p.Category.ID == 2 {
					products = append(products, p)
				}
			}
		}
		json.NewEncoder(w).Encode(products)

	case strings.HasPrefix(r.URL.Path, "/products/"):
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		for _, p := range testProducts {
			if id == jsonInt(p.ID) {
				json.NewEncoder(w).Encode(p)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Could not find any entity"})

	case r.URL.Path == "/categories":
		json.NewEncoder(w).Encode([]client.Category{
			{ID: 1, Name: "Clothessss"},
			{ID: 2, Name: "Electronics"},
			{ID: 3, Name: "Furniture"},
			{ID: 9, Name: "string"},
		})

	case r.URL.Path == "/auth/login":
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "jane@mail.com" || creds.Password != "Secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"message": "Unauthorized", "statusCode": 401})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": testToken, "refresh_token": "refresh"})

	case r.URL.Path == "/auth/profile":
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"message": "Unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(client.User{ID: 7, Name: "Jane", Email: "jane@mail.com", Role: "customer"})

	case r.URL.Path == "/users":
		var nu client.NewUser
		json.NewDecoder(r.Body).Decode(&nu)
		f.mu.Lock()
		f.createdUser = &nu
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(client.User{ID: 42, Name: nu.Name, Email: nu.Email, Avatar: nu.Avatar, Role: "customer"})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// useShop points the commands at a fake API and a fresh data directory
func useShop(t *testing.T) *fakeShop {
	t.Helper()
	shop := &fakeShop{}
	server := httptest.NewServer(shop)
	t.Cleanup(server.Close)

	apiURL = server.URL
	dataDir = t.TempDir()
	t.Cleanup(func() {
		apiURL = ""
		dataDir = ""
		jsonOutput = false
	})
	return shop
}
