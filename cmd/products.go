package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mercato-dev/mercato/internal/api"
	"github.com/mercato-dev/mercato/internal/cart"
)

func newProductsCmd() *cobra.Command {
	var search string

	products := &cobra.Command{
		Use:   "products",
		Short: "Browse and administer the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := a.client.Products(cmd.Context())
			if err != nil {
				return fmt.Errorf("list products: %s", renderAPIError(err))
			}
			printProducts(filterProducts(list, search))
			return nil
		},
	}
	products.Flags().StringVarP(&search, "search", "s", "", "filter by title or description")

	products.AddCommand(newProductShowCmd())
	products.AddCommand(newProductCreateCmd())
	products.AddCommand(newProductUpdateCmd())
	products.AddCommand(newProductDeleteCmd())
	return products
}

func newProductShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := a.client.Product(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("product %d: %s", id, renderAPIError(err))
			}
			printProductDetail(p)
			return nil
		},
	}
}

// productFlags declares the create/update field flags on cmd and returns
// a builder that reads them back into the wire payload.
func productFlags(cmd *cobra.Command) func() api.ProductInput {
	var (
		title       string
		description string
		priceCents  int64
		currency    string
		stock       int64
		slug        string
	)
	cmd.Flags().StringVar(&title, "title", "", "product title")
	cmd.Flags().StringVar(&description, "description", "", "product description")
	cmd.Flags().Int64Var(&priceCents, "price-cents", 0, "price in minor currency units")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "currency code")
	cmd.Flags().Int64Var(&stock, "stock", 0, "available stock")
	cmd.Flags().StringVar(&slug, "slug", "", "URL-friendly identifier")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("price-cents")
	cmd.MarkFlagRequired("slug")

	return func() api.ProductInput {
		in := api.ProductInput{
			Title:      title,
			PriceCents: priceCents,
			Currency:   currency,
			Stock:      stock,
			Slug:       slug,
		}
		if description != "" {
			in.Description = &description
		}
		return in
	}
}

func newProductCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product (admin)",
	}
	input := productFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if !a.session.IsAdmin() {
			return fmt.Errorf("admin session required")
		}
		p, err := a.client.CreateProduct(cmd.Context(), input())
		if err != nil {
			return fmt.Errorf("create product: %s", renderAPIError(err))
		}
		fmt.Printf("Created product #%d (%s)\n", p.ID, p.Title)
		return nil
	}
	return cmd
}

func newProductUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a product (admin)",
		Args:  cobra.ExactArgs(1),
	}
	input := productFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		a, cleanup, err := buildApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if !a.session.IsAdmin() {
			return fmt.Errorf("admin session required")
		}
		p, err := a.client.UpdateProduct(cmd.Context(), id, input())
		if err != nil {
			return fmt.Errorf("update product: %s", renderAPIError(err))
		}
		fmt.Printf("Updated product #%d (%s)\n", p.ID, p.Title)
		return nil
	}
	return cmd
}

func newProductDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.session.IsAdmin() {
				return fmt.Errorf("admin session required")
			}
			if err := a.client.DeleteProduct(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete product: %s", renderAPIError(err))
			}
			fmt.Printf("Deleted product #%d\n", id)
			return nil
		},
	}
}

// filterProducts matches the storefront's client-side search: a
// case-insensitive substring match on title or description.
func filterProducts(products []cart.Product, query string) []cart.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}
	var out []cart.Product
	for _, p := range products {
		title := strings.ToLower(p.Title)
		desc := ""
		if p.Description != nil {
			desc = strings.ToLower(*p.Description)
		}
		if strings.Contains(title, query) || strings.Contains(desc, query) {
			out = append(out, p)
		}
	}
	return out
}

func printProducts(products []cart.Product) {
	if len(products) == 0 {
		fmt.Println("No products.")
		return
	}
	for _, p := range products {
		fmt.Printf("#%-4d %-30s %12s  stock %d\n", p.ID, p.Title, money(p.PriceCents, p.Currency), p.Stock)
	}
}

func printProductDetail(p cart.Product) {
	fmt.Printf("#%d %s\n", p.ID, p.Title)
	if p.Description != nil && *p.Description != "" {
		fmt.Println(*p.Description)
	}
	fmt.Printf("Price: %s\n", money(p.PriceCents, p.Currency))
	fmt.Printf("Stock: %d\n", p.Stock)
	fmt.Printf("Slug:  %s\n", p.Slug)
}
