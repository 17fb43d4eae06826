// ABOUTME: Cart commands: show, add, remove, set quantity, decrease, clear, checkout
// ABOUTME: Everything except adding requires a logged-in session, like the cart page

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/client"
)

const (
	cartPath     = "/cart"
	checkoutPath = "/checkout"
)

var addQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	Long:  `Show the cart lines and total. Requires a logged-in session.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCartShow(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCartAdd(ctx, os.Stdout, args[0], addQuantity); code != 0 {
			os.Exit(code)
		}
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCartMutation(args[0], func(c *cart.Controller, id int) error { return c.Remove(id) })
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a cart line (values below 1 are ignored)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		q, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: invalid quantity %q\n", args[1])
			os.Exit(1)
		}
		runCartMutation(args[0], func(c *cart.Controller, id int) error { return c.SetQuantity(id, q) })
	},
}

var cartDecreaseCmd = &cobra.Command{
	Use:   "decrease <product-id>",
	Short: "Lower the quantity of a cart line by one, stopping at 1",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCartMutation(args[0], func(c *cart.Controller, id int) error { return c.Decrease(id) })
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		code := runCartEdit(ctx, os.Stdout, func(c *cart.Controller) error { return c.Clear() })
		if code != 0 {
			os.Exit(code)
		}
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Buy everything in the cart",
	Long:  `Place a simulated order for the cart contents and empty the cart. No payment is taken.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCheckout(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "Units to add")

	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartSetCmd, cartDecreaseCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
}

func runCartMutation(rawID string, fn func(c *cart.Controller, id int) error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	id, err := parseProductID(rawID)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(1)
	}
	code := runCartEdit(ctx, os.Stdout, func(c *cart.Controller) error { return fn(c, id) })
	if code != 0 {
		os.Exit(code)
	}
}

func parseProductID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

// runCartShow prints the cart and returns exit code
func runCartShow(ctx context.Context, w io.Writer) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, cartPath) {
			return 1
		}
		writeCart(w, a.cart)
		return 0
	})
}

// runCartEdit applies fn to the cart on the cart page, then prints the cart
func runCartEdit(ctx context.Context, w io.Writer, fn func(c *cart.Controller) error) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, cartPath) {
			return 1
		}
		if err := fn(a.cart); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		writeCart(w, a.cart)
		return 0
	})
}

// runCartAdd fetches the product and adds it. Adding works without a session.
func runCartAdd(ctx context.Context, w io.Writer, rawID string, quantity int) int {
	id, err := parseProductID(rawID)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	return withApp(w, func(a *app) int {
		p, err := a.client.Product(ctx, id)
		if err != nil {
			if client.StatusCode(err) == 404 {
				fmt.Fprintf(w, "Product %d not found\n", id)
				return 1
			}
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}

		if err := a.cart.Add(cart.ItemFromProduct(*p), quantity); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}

		if IsJSONOutput() {
			writeCart(w, a.cart)
			return 0
		}
		fmt.Fprintf(w, "Added %s to the cart (%d items, $%.2f)\n", p.Title, a.cart.Count(), a.cart.Total())
		return 0
	})
}

// runCheckout places the simulated order and returns exit code
func runCheckout(ctx context.Context, w io.Writer) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, checkoutPath) {
			return 1
		}

		receipt, err := a.cart.Checkout()
		if errors.Is(err, cart.ErrEmptyCart) {
			fmt.Fprintln(w, "Your cart is empty.")
			return 1
		}
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}

		if IsJSONOutput() {
			printJSON(w, receipt)
			return 0
		}
		fmt.Fprintln(w, formatReceiptHuman(receipt))
		return 0
	})
}

// cartView is the JSON shape of the cart
type cartView struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

func writeCart(w io.Writer, c *cart.Controller) {
	items := c.Items()
	if IsJSONOutput() {
		if items == nil {
			items = []cart.Item{}
		}
		printJSON(w, cartView{Items: items, Count: c.Count(), Total: c.Total()})
		return
	}
	fmt.Fprint(w, formatCartHuman(items, c.Total()))
}

// formatCartHuman renders cart lines and the total
func formatCartHuman(items []cart.Item, total float64) string {
	if len(items) == 0 {
		return "Your cart is empty.\n"
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%.2f\t$%.2f\n", it.ID, it.Title, it.Quantity, it.Price, it.Subtotal())
	}
	tw.Flush()
	fmt.Fprintf(&sb, "\nTotal: $%.2f\n", total)
	return sb.String()
}

// formatReceiptHuman renders an order confirmation
func formatReceiptHuman(r *cart.Receipt) string {
	units := 0
	for _, it := range r.Items {
		units += it.Quantity
	}
	return fmt.Sprintf(`Order placed
Order:  %s
Items:  %d
Total:  $%.2f
Placed: %s`, r.OrderID, units, r.Total, r.PlacedAt.Format("2006-01-02 15:04:05"))
}
