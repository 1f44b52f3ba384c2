package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bookshelf/cmd/bookshelf/output"
)

const defaultBaseURL = "http://localhost:8080"

var (
	apiURL    string
	tokenPath string
	timeout   time.Duration
	jsonOut   bool
)

var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "Track which friend has which of your books",
	Long: `bookshelf talks to a running api-server.

Examples:
  bookshelf auth login --username alice
  bookshelf books add --title Dune --author "Frank Herbert"
  bookshelf lend --book <bookId> --friend <friendId> --due 2024-06-01
  bookshelf return <lendingId> --condition good
  bookshelf stats --year 2024`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("BOOKSHELF_API", defaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", defaultTokenPath(), "token file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.bookshelf-token.json"
	}
	return filepath.Join(home, ".bookshelf", "token.json")
}
