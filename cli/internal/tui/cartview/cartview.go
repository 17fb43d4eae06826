// ABOUTME: Cart screen listing lines with quantity controls
// ABOUTME: Edits the cart controller directly and asks the app to check out

package cartview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/tui/styles"
	"github.com/markalston/storefront/cli/internal/tui/widgets"
)

// CheckoutMsg is sent when the user asks to buy the cart
type CheckoutMsg struct{}

// CancelledMsg is sent when the user leaves the cart
type CancelledMsg struct{}

// CartView displays and edits the cart
type CartView struct {
	cart   *cart.Controller
	cursor int
	err    string
	width  int
	height int
}

// New creates a cart view over c
func New(c *cart.Controller, width, height int) *CartView {
	return &CartView{cart: c, width: width, height: height}
}

// SetSize updates the view dimensions
func (v *CartView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Init implements tea.Model
func (v *CartView) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (v *CartView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	v.err = ""
	items := v.cart.Items()

	switch key.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(items)-1 {
			v.cursor++
		}
	case "+", "=":
		if it, ok := v.current(items); ok {
			v.apply(v.cart.AddOne(it))
		}
	case "-":
		if it, ok := v.current(items); ok {
			v.apply(v.cart.Decrease(it.ID))
		}
	case "d", "delete":
		if it, ok := v.current(items); ok {
			v.apply(v.cart.Remove(it.ID))
		}
	case "x":
		v.apply(v.cart.Clear())
	case "o", "enter":
		if len(items) == 0 {
			v.err = "Your cart is empty."
			return v, nil
		}
		return v, func() tea.Msg { return CheckoutMsg{} }
	case "esc", "b":
		return v, func() tea.Msg { return CancelledMsg{} }
	}

	if n := len(v.cart.Items()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	return v, nil
}

func (v *CartView) current(items []cart.Item) (cart.Item, bool) {
	if v.cursor < 0 || v.cursor >= len(items) {
		return cart.Item{}, false
	}
	return items[v.cursor], true
}

func (v *CartView) apply(err error) {
	if err != nil {
		v.err = err.Error()
	}
}

// SetError sets an error message to display
func (v *CartView) SetError(msg string) {
	v.err = msg
}

// View implements tea.Model
func (v *CartView) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Your Cart"))
	sb.WriteString("  ")
	sb.WriteString(widgets.CartBadge(v.cart.Count()))
	sb.WriteString("\n\n")

	items := v.cart.Items()
	if len(items) == 0 {
		sb.WriteString(styles.Subtitle.Render("Your cart is empty."))
		sb.WriteString("\n")
	}

	titleWidth := max(20, v.width-40)
	for i, it := range items {
		selected := i == v.cursor
		title := it.Title
		if len(title) > titleWidth {
			title = title[:titleWidth-3] + "..."
		}
		line := fmt.Sprintf("%-*s %3d x $%.2f", titleWidth, title, it.Quantity, it.Price)
		sb.WriteString(styles.Cursor(selected) + styles.Row(line, selected) + "  " + styles.Price(it.Subtotal()) + "\n")
	}

	if len(items) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.ValueStyle.Render("Total: "))
		sb.WriteString(styles.Price(v.cart.Total()))
		sb.WriteString("\n")
	}

	if v.err != "" {
		sb.WriteString("\n")
		sb.WriteString(widgets.StatusText(v.err, widgets.StatusCritical))
	}

	return lipgloss.NewStyle().Width(v.width).Render(sb.String())
}
