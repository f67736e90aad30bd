package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mercato-dev/mercato/internal/api"
	"github.com/mercato-dev/mercato/internal/cart"
	"github.com/mercato-dev/mercato/internal/config"
	"github.com/mercato-dev/mercato/internal/session"
	"github.com/mercato-dev/mercato/internal/store"
)

var (
	cfgFile     string
	apiBaseFlag string
	verbose     bool

	// Package-level version info, set by Execute().
	appVersion string
	appCommit  string
	appDate    string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date

	rootCmd := &cobra.Command{
		Use:           "mercato",
		Short:         "Storefront client",
		Long:          "mercato is a command-line client for the storefront API: browse products, manage a cart, check out, and administer the catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/mercato/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiBaseFlag, "api", "", "override backend base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newProductsCmd())
	rootCmd.AddCommand(newOrdersCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired-up components a command needs. There are no
// package-level singletons: session and cart are constructed here and
// passed down, and each remains the single writer of its own state.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      *store.KV
	session *session.Session
	cart    *cart.Cart
	client  *api.Client
}

// buildApp loads config and wires store -> session -> gateway. The
// returned cleanup closes the store and flushes the logger.
func buildApp() (*app, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if apiBaseFlag != "" {
		cfg.APIBase = apiBaseFlag
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("init logger: %w", err)
		}
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, err
	}
	kv, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.Load(kv, logger)
	if err != nil {
		kv.Close()
		return nil, nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		kv.Close()
		return nil, nil, err
	}

	client := api.New(cfg.APIBase, sess,
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithLogger(logger),
	)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		session: sess,
		cart:    cart.New(),
		client:  client,
	}
	cleanup := func() {
		kv.Close()
		logger.Sync()
	}
	return a, cleanup, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mercato v%s (commit %s, built %s)\n", appVersion, appCommit, appDate)
		},
	}
}

// money renders minor currency units the way the storefront displays
// prices: two decimals plus the currency code.
func money(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
