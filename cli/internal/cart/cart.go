// ABOUTME: Cart controller holding ordered line items persisted under the "cart" key
// ABOUTME: Every mutation writes the whole cart synchronously; totals are derived on read

package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/storage"
)

// StorageKey is the local storage key holding the cart
const StorageKey = "cart"

// ErrEmptyCart is returned by Checkout when there is nothing to buy
var ErrEmptyCart = errors.New("cart is empty")

// Category is the product category carried on a line item
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item is one cart line
type Item struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Image    string   `json:"image"`
	Quantity int      `json:"quantity"`
	Category Category `json:"category"`
}

// Subtotal is price times quantity
func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemFromProduct builds a line item from a catalog product. The first
// image becomes the cart image.
func ItemFromProduct(p client.Product) Item {
	var image string
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return Item{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Image:    image,
		Quantity: 1,
		Category: Category{ID: p.Category.ID, Name: p.Category.Name},
	}
}

// Receipt is the result of a simulated purchase
type Receipt struct {
	OrderID  string    `json:"order_id"`
	Items    []Item    `json:"items"`
	Total    float64   `json:"total"`
	PlacedAt time.Time `json:"placed_at"`
}

// Controller owns the cart lines
type Controller struct {
	mu     sync.Mutex
	items  []Item
	store  storage.Items
	logger *slog.Logger
	now    func() time.Time
}

// New rehydrates the cart from store before returning. A corrupt stored
// value yields an empty cart.
func New(store storage.Items, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{store: store, logger: logger, now: time.Now}

	raw, ok, err := store.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if ok {
		c.items = c.rehydrate(raw)
	}
	return c, nil
}

func (c *Controller) rehydrate(raw string) []Item {
	var stored []Item
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.logger.Warn("discarding corrupt cart", "error", err)
		return nil
	}

	var items []Item
	index := make(map[int]int, len(stored))
	for _, it := range stored {
		if it.Quantity < 1 {
			continue
		}
		if i, seen := index[it.ID]; seen {
			items[i].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	return items
}

// Add puts quantity units of item in the cart, merging with an existing line
// of the same id. A quantity of 0 or less counts as 1.
func (c *Controller) Add(item Item, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(item.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		c.items = append(c.items, item)
	}
	return c.persist()
}

// AddOne adds a single unit
func (c *Controller) AddOne(item Item) error {
	return c.Add(item, 1)
}

// Remove deletes the line for id; an absent id changes nothing
func (c *Controller) Remove(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.persist()
}

// SetQuantity replaces the quantity for id. Quantities below 1 are ignored.
func (c *Controller) SetQuantity(id, quantity int) error {
	if quantity < 1 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = quantity
	return c.persist()
}

// Decrease lowers the quantity for id by one, stopping at 1
func (c *Controller) Decrease(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 || c.items[i].Quantity <= 1 {
		return nil
	}
	c.items[i].Quantity--
	return c.persist()
}

// Clear empties the cart
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.persist()
}

// Items returns a copy of the lines in insertion order
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Total is the sum of price times quantity
func (c *Controller) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.items)
}

// Count is the number of units across all lines
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Checkout simulates a purchase: it records a receipt and empties the cart
func (c *Controller) Checkout() (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return nil, ErrEmptyCart
	}

	receipt := &Receipt{
		OrderID:  uuid.NewString(),
		Items:    append([]Item(nil), c.items...),
		Total:    total(c.items),
		PlacedAt: c.now(),
	}

	c.items = nil
	if err := c.persist(); err != nil {
		c.items = receipt.Items
		return nil, err
	}
	c.logger.Info("order placed", "order_id", receipt.OrderID, "items", len(receipt.Items), "total", receipt.Total)
	return receipt, nil
}

func (c *Controller) indexOf(id int) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole cart; callers hold mu
func (c *Controller) persist() error {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := c.store.SetItem(StorageKey, string(b)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func total(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}
