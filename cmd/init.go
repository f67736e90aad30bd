package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mercato-dev/mercato/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive configuration wizard",
		Long:  "Guides you through setting up mercato: choose the backend URL and save the config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Welcome to mercato configuration wizard!")
	fmt.Println()

	fmt.Printf("Backend base URL [%s]: ", config.DefaultAPIBase)
	input, _ := reader.ReadString('\n')
	apiBase := strings.TrimSpace(input)
	if apiBase == "" {
		apiBase = config.DefaultAPIBase
	}
	apiBase = strings.TrimRight(apiBase, "/")

	fmt.Print("Data directory (empty for default): ")
	input, _ = reader.ReadString('\n')
	dataDir := strings.TrimSpace(input)

	cfg := &config.Config{
		APIBase: apiBase,
		DataDir: dataDir,
	}
	if err := config.SaveToFile(cfgFile, cfg); err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Try: mercato products")
	return nil
}
