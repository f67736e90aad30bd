package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mercato-dev/mercato/internal/api"
)

func newOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			email := orderIdentity(a)
			if email == "" {
				return fmt.Errorf("not logged in")
			}

			orders, err := a.client.MyOrders(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("load orders: %s", renderAPIError(err))
			}
			printOrders(orders)
			return nil
		},
	}
}

// orderIdentity returns the email the order endpoints should see: the
// logged-in user's, or the legacy slot when no session exists.
func orderIdentity(a *app) string {
	if user := a.session.User(); user != nil && a.session.IsAuthenticated() {
		return user.Email
	}
	return a.session.OrderEmail()
}

func printOrders(orders []api.Order) {
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Printf("Order #%d  %s  %s  %s\n", o.ID, o.Status, money(o.TotalCents, o.Currency), o.CreatedAt)
		for _, line := range o.Items {
			title := fmt.Sprintf("product %d", line.ProductID)
			if line.Title != nil {
				title = *line.Title
			}
			fmt.Printf("  %dx %-30s %12s\n", line.Quantity, title, money(line.UnitPriceCents*int64(line.Quantity), o.Currency))
		}
	}
}
