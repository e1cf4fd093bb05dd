package main

import (
	"fmt"
	"os"

	"github.com/kalagasite/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kalaga",
	Short: "KALAGA portfolio site and content admin",
	Long: `Serves the public portfolio pages and the admin content editor.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.AppConfig {
	return config.Load()
}
