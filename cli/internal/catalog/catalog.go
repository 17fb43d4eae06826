// ABOUTME: Product filtering and category allow-listing for the catalog views
// ABOUTME: Pure functions over slices fetched by the API client

package catalog

import (
	"regexp"
	"slices"
	"strings"

	"github.com/markalston/storefront/cli/internal/client"
)

// AllowedCategories are the category names shown in the filter
var AllowedCategories = []string{
	"electronics",
	"furniture",
	"shoes",
	"miscellaneous",
	"clothes",
	"books",
	"fashions",
}

var clothesTypo = regexp.MustCompile(`(?i)clothessss`)

// CleanCategoryName trims the name and repairs the upstream "clothessss" typo
func CleanCategoryName(name string) string {
	return clothesTypo.ReplaceAllString(strings.TrimSpace(name), "clothes")
}

// VisibleCategories keeps the allow-listed categories, with cleaned names,
// in their original order.
func VisibleCategories(categories []client.Category) []client.Category {
	var visible []client.Category
	for _, c := range categories {
		name := CleanCategoryName(c.Name)
		if !slices.Contains(AllowedCategories, strings.ToLower(name)) {
			continue
		}
		c.Name = name
		visible = append(visible, c)
	}
	return visible
}

// Filter narrows a product list. Zero values disable a criterion.
type Filter struct {
	CategoryID int
	Search     string
	MinPrice   float64
	MaxPrice   float64
}

// IsZero reports whether the filter keeps every product
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether p passes every set criterion
func (f Filter) Matches(p client.Product) bool {
	if f.CategoryID != 0 && p.Category.ID != f.CategoryID {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(s)) {
			return false
		}
	}
	if p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

// Apply returns the products that match, in order
func (f Filter) Apply(products []client.Product) []client.Product {
	if f.IsZero() {
		return products
	}
	var out []client.Product
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
