// ABOUTME: Order confirmation view shown after checkout
// ABOUTME: Lists the purchased lines, the total and the order id

package receipt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/tui/icons"
	"github.com/markalston/storefront/cli/internal/tui/styles"
)

// Receipt displays a placed order
type Receipt struct {
	receipt *cart.Receipt
	width   int
}

// New creates a receipt view
func New(r *cart.Receipt, width int) *Receipt {
	return &Receipt{
		receipt: r,
		width:   width,
	}
}

// View renders the receipt
func (r *Receipt) View() string {
	if r.receipt == nil {
		return "No order placed"
	}

	var sb strings.Builder

	sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " Order placed"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Order %s  %s", r.receipt.OrderID, r.receipt.PlacedAt.Format("2006-01-02 15:04"))))
	sb.WriteString("\n\n")

	units := 0
	for _, it := range r.receipt.Items {
		units += it.Quantity
		sb.WriteString(fmt.Sprintf("  %d x %s  %s\n", it.Quantity, it.Title, styles.Price(it.Subtotal())))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Items: %d\n", units))
	sb.WriteString(styles.ValueStyle.Render("Total: "))
	sb.WriteString(styles.Price(r.receipt.Total))
	sb.WriteString("\n\n")
	sb.WriteString(styles.Subtitle.Render("No payment was taken. Thanks for shopping!"))

	return lipgloss.NewStyle().Width(r.width).Render(sb.String())
}
