package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mercato-dev/mercato/internal/api"
	"github.com/mercato-dev/mercato/internal/session"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Authenticate against the storefront",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			return runLogin(cmd.Context(), a, email)
		},
	}
}

func runLogin(ctx context.Context, a *app, email string) error {
	reader := bufio.NewReader(os.Stdin)

	if email == "" {
		fmt.Print("Email: ")
		line, _ := reader.ReadString('\n')
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, err := readPassword(reader)
	if err != nil {
		return err
	}

	result, err := a.client.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return fmt.Errorf("invalid credentials")
		}
		return err
	}

	if err := a.session.Login(result.AccessToken, session.User{
		Email:   email,
		IsAdmin: result.IsAdmin,
	}); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s", email)
	if result.IsAdmin {
		fmt.Print(" (admin)")
	}
	fmt.Println()
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [email]",
		Short: "Create a storefront account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			reader := bufio.NewReader(os.Stdin)
			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			if email == "" {
				fmt.Print("Email: ")
				line, _ := reader.ReadString('\n')
				email = strings.TrimSpace(line)
			}
			if email == "" {
				return fmt.Errorf("email is required")
			}

			password, err := readPassword(reader)
			if err != nil {
				return err
			}

			account, err := a.client.Register(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("register: %s", renderAPIError(err))
			}

			fmt.Printf("Account created: %s", account.Email)
			if account.IsAdmin {
				fmt.Print(" (admin)")
			}
			fmt.Println()
			fmt.Println("Now run: mercato login", account.Email)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			printWhoami(a)
			return nil
		},
	}
}

func printWhoami(a *app) {
	if !a.session.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return
	}
	user := a.session.User()
	if user == nil {
		fmt.Println("Logged in (no user record).")
		return
	}
	fmt.Printf("Logged in as %s", user.Email)
	if a.session.IsAdmin() {
		fmt.Print(" (admin)")
	}
	fmt.Println()
}

func newAccountCmd() *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Manage the storefront account",
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the account behind the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.session.IsAuthenticated() {
				return fmt.Errorf("not logged in")
			}
			if !yes {
				fmt.Print("Delete your account? This cannot be undone. Type 'yes' to confirm: ")
				reader := bufio.NewReader(os.Stdin)
				line, _ := reader.ReadString('\n')
				if strings.TrimSpace(line) != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := a.client.DeleteAccount(cmd.Context()); err != nil {
				return fmt.Errorf("delete account: %s", renderAPIError(err))
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Println("Account deleted.")
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	account.AddCommand(del)
	return account
}

func newIdentityCmd() *cobra.Command {
	identity := &cobra.Command{
		Use:   "identity",
		Short: "Manage the legacy order-identity email",
		Long:  "The order endpoints identify buyers by an X-User-Email header that predates token auth. This slot sets that value independently of the login session.",
	}

	identity.AddCommand(&cobra.Command{
		Use:   "set-email EMAIL",
		Short: "Set the legacy identity email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()
			return a.session.SetOrderEmail(args[0])
		},
	})

	identity.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the legacy identity email",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()
			return a.session.ClearOrderEmail()
		},
	})

	identity.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the legacy identity email",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := buildApp()
			if err != nil {
				return err
			}
			defer cleanup()

			email := a.session.OrderEmail()
			if email == "" {
				fmt.Println("(unset)")
				return nil
			}
			fmt.Println(email)
			return nil
		},
	})

	return identity
}

// readPassword prompts without echo on a terminal, falling back to a
// plain line read when stdin is piped.
func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
