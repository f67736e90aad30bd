package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mercato-dev/mercato/internal/api"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout ID[=QTY] [ID[=QTY]...]",
		Short: "Validate and purchase products",
		Long:  "Builds a cart from the given product ids, validates it against current stock, and places the order. Quantity defaults to 1.",
		Example: `  mercato checkout 3
  mercato checkout 1=2 7=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			for _, arg := range args {
				id, qty, err := parseItemArg(arg)
				if err != nil {
					return err
				}
				p, err := a.client.Product(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("product %d: %s", id, renderAPIError(err))
				}
				a.cart.Add(p)
				if qty > 1 {
					a.cart.SetQuantity(id, float64(qty))
				}
			}

			return runCheckout(cmd.Context(), a)
		},
	}
}

// parseItemArg parses "ID" or "ID=QTY".
func parseItemArg(arg string) (int64, int, error) {
	idPart, qtyPart, hasQty := strings.Cut(arg, "=")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product id %q", idPart)
	}
	qty := 1
	if hasQty {
		qty, err = strconv.Atoi(qtyPart)
		if err != nil || qty < 1 {
			return 0, 0, fmt.Errorf("invalid quantity %q", qtyPart)
		}
	}
	return id, qty, nil
}

// runCheckout validates the cart and places the order, mirroring the
// storefront's two-step flow. The cart is cleared only on success.
func runCheckout(ctx context.Context, a *app) error {
	if a.cart.Len() == 0 {
		return fmt.Errorf("cart is empty")
	}
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("you must log in to complete the purchase")
	}
	user := a.session.User()
	if user == nil || user.Email == "" {
		return fmt.Errorf("you must log in to complete the purchase")
	}

	items := api.CheckoutItems(a.cart.Items())

	if err := a.client.ValidateCart(ctx, user.Email, items); err != nil {
		return fmt.Errorf("%s", checkoutFailure(err))
	}

	order, err := a.client.CreateOrder(ctx, user.Email, items)
	if err != nil {
		return fmt.Errorf("%s", checkoutFailure(err))
	}

	a.cart.Clear()
	fmt.Printf("Order created: #%d\n", order.ID)
	return nil
}

// checkoutFailure renders a checkout error for the user. Stock
// shortfalls get the available/requested numbers from the decoded
// detail; a plain string detail passes through; anything else falls
// back to a generic message.
func checkoutFailure(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if detail, ok := apiErr.Detail(); ok {
			if len(detail.Errors) > 0 {
				first := detail.Errors[0]
				switch first.Reason {
				case api.ReasonOutOfStock:
					return fmt.Sprintf(
						"Not enough stock to complete the purchase. Available: %d, requested: %d.",
						first.Stock, first.Requested,
					)
				case api.ReasonNotFound:
					return fmt.Sprintf("Product %d no longer exists.", first.ProductID)
				}
			}
			if detail.Message != "" {
				return detail.Message
			}
		}
	}
	return "The cart could not be validated. Please check quantities and try again."
}
