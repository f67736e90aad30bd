package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive storefront session",
		Long:  "Starts an interactive session. The cart lives in memory for the duration of the shell and is gone when it exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return runShell(ctx, a)
		},
	}
}

func runShell(ctx context.Context, a *app) error {
	fmt.Printf("mercato %s — type 'help' for commands, 'quit' to leave.\n", displayVersion())
	printWhoami(a)

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Print("mercato> ")

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		command, args := fields[0], fields[1:]

		if command == "quit" || command == "exit" {
			return nil
		}
		if err := dispatch(ctx, a, command, args); err != nil {
			fmt.Printf("Error: %s\n", err)
		}
	}
}

func dispatch(ctx context.Context, a *app, command string, args []string) error {
	switch command {
	case "help":
		printShellHelp()
		return nil

	case "products":
		list, err := a.client.Products(ctx)
		if err != nil {
			return fmt.Errorf("%s", renderAPIError(err))
		}
		printProducts(filterProducts(list, strings.Join(args, " ")))
		return nil

	case "show":
		id, err := shellID(args)
		if err != nil {
			return err
		}
		p, err := a.client.Product(ctx, id)
		if err != nil {
			return fmt.Errorf("%s", renderAPIError(err))
		}
		printProductDetail(p)
		return nil

	case "add":
		id, err := shellID(args)
		if err != nil {
			return err
		}
		p, err := a.client.Product(ctx, id)
		if err != nil {
			return fmt.Errorf("%s", renderAPIError(err))
		}
		a.cart.Add(p)
		fmt.Printf("Added %s to cart.\n", p.Title)
		return nil

	case "remove":
		id, err := shellID(args)
		if err != nil {
			return err
		}
		a.cart.Remove(id)
		return nil

	case "qty":
		if len(args) != 2 {
			return fmt.Errorf("usage: qty ID QUANTITY")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		q, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		a.cart.SetQuantity(id, q)
		return nil

	case "cart":
		printCart(a)
		return nil

	case "clear":
		a.cart.Clear()
		fmt.Println("Cart cleared.")
		return nil

	case "checkout":
		return runCheckout(ctx, a)

	case "orders":
		email := orderIdentity(a)
		if email == "" {
			return fmt.Errorf("not logged in")
		}
		orders, err := a.client.MyOrders(ctx, email)
		if err != nil {
			return fmt.Errorf("%s", renderAPIError(err))
		}
		printOrders(orders)
		return nil

	case "login":
		email := ""
		if len(args) == 1 {
			email = args[0]
		}
		return runLogin(ctx, a, email)

	case "logout":
		if err := a.session.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil

	case "whoami":
		printWhoami(a)
		return nil

	default:
		return fmt.Errorf("unknown command %q; type 'help'", command)
	}
}

func shellID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}

func printCart(a *app) {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	currency := items[0].Product.Currency
	for _, it := range items {
		fmt.Printf("%dx %-30s %12s\n", it.Quantity, it.Product.Title,
			money(it.Product.PriceCents*int64(it.Quantity), it.Product.Currency))
	}
	fmt.Printf("Total: %s\n", money(a.cart.TotalCents(), currency))
}

func printShellHelp() {
	fmt.Print(`Commands:
  products [query]   list the catalog, optionally filtered
  show ID            show one product
  add ID             add a product to the cart
  remove ID          remove a product from the cart
  qty ID QUANTITY    set a line's quantity (minimum 1)
  cart               show the cart
  clear              empty the cart
  checkout           validate the cart and place the order
  orders             show your order history
  login [email]      authenticate
  logout             forget the session
  whoami             show the current session
  quit               leave the shell
`)
}

// displayVersion returns a short version string for the shell banner,
// e.g. "v0.1.0 (abc1234)".
func displayVersion() string {
	v := "v" + appVersion
	if appCommit != "" && appCommit != "none" {
		v += " (" + appCommit + ")"
	}
	return v
}
