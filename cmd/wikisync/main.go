// Package main provides the entry point for the wikisync CLI, which keeps the
// site's lore datasets and design tokens in sync with the project wiki.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wikisync",
	Short: "Wiki content sync pipeline",
	Long: `wikisync pulls faction, biome and brand pages from the project wiki and keeps the site's datasets in sync: fetch -> transform -> validate -> audit.

Configuration is layered: built-in defaults, then --config, then environment variables (GITLAB_TOKEN, GITLAB_PROJECT_ID, ...), then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	rootConfigPath  string
	rootVerbose     bool
	rootLogLevel    string
	rootDatabaseURL string
	rootMetricsFile string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Path to a JSON pipeline config file")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed stage summaries")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	flags.StringVar(&rootDatabaseURL, "db-url", "", "PostgreSQL URL for run history (optional, defaults to DATABASE_URL env var)")
	flags.StringVar(&rootMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when the command ends")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
