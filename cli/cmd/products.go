// ABOUTME: Catalog commands: list products, show one product, list categories
// ABOUTME: Applies category, search and price filters to the fetched catalog

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/catalog"
	"github.com/markalston/storefront/cli/internal/client"
)

var productsFilter catalog.Filter

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Long:  `List catalog products, optionally narrowed by category, title search and price range.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runProducts(ctx, os.Stdout, productsFilter); code != 0 {
			os.Exit(code)
		}
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runProduct(ctx, os.Stdout, args[0]); code != 0 {
			os.Exit(code)
		}
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCategories(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	productsCmd.Flags().IntVar(&productsFilter.CategoryID, "category", 0, "Only products in this category id")
	productsCmd.Flags().StringVar(&productsFilter.Search, "search", "", "Case-insensitive title search")
	productsCmd.Flags().Float64Var(&productsFilter.MinPrice, "min-price", 0, "Minimum price")
	productsCmd.Flags().Float64Var(&productsFilter.MaxPrice, "max-price", 0, "Maximum price (0 for no limit)")

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(categoriesCmd)
}

// runProducts lists products and returns exit code
func runProducts(ctx context.Context, w io.Writer, f catalog.Filter) int {
	c := client.New(GetAPIURL(), nil)

	var (
		products []client.Product
		err      error
	)
	if f.CategoryID != 0 {
		products, err = c.ProductsByCategory(ctx, f.CategoryID)
	} else {
		products, err = c.Products(ctx)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	products = f.Apply(products)

	if IsJSONOutput() {
		if products == nil {
			products = []client.Product{}
		}
		printJSON(w, products)
		return 0
	}

	fmt.Fprint(w, formatProductsHuman(products))
	return 0
}

// runProduct shows a single product and returns exit code
func runProduct(ctx context.Context, w io.Writer, rawID string) int {
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		fmt.Fprintf(w, "Error: invalid product id %q\n", rawID)
		return 1
	}

	p, err := client.New(GetAPIURL(), nil).Product(ctx, id)
	if err != nil {
		if client.StatusCode(err) == 404 {
			fmt.Fprintf(w, "Product %d not found\n", id)
			return 1
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, p)
		return 0
	}

	fmt.Fprintln(w, formatProductHuman(p))
	return 0
}

// runCategories lists the allow-listed categories and returns exit code
func runCategories(ctx context.Context, w io.Writer) int {
	categories, err := client.New(GetAPIURL(), nil).Categories(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	visible := catalog.VisibleCategories(categories)

	if IsJSONOutput() {
		if visible == nil {
			visible = []client.Category{}
		}
		printJSON(w, visible)
		return 0
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range visible {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	tw.Flush()
	return 0
}

// formatProductsHuman renders a product table
func formatProductsHuman(products []client.Product) string {
	if len(products) == 0 {
		return "No products match.\n"
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%.2f\n", p.ID, p.Title, catalog.CleanCategoryName(p.Category.Name), p.Price)
	}
	tw.Flush()
	return sb.String()
}

// formatProductHuman renders product details
func formatProductHuman(p *client.Product) string {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return fmt.Sprintf(`%s
Price:    $%.2f
Category: %s
Image:    %s

%s

Add it with: storefront cart add %d`, p.Title, p.Price, catalog.CleanCategoryName(p.Category.Name), image, p.Description, p.ID)
}
