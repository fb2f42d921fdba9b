package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Folio Relay - edge-caching proxy for portfolio data",
	Long: `Folio Relay sits between a portfolio front end and its public data
sources (GitHub, LeetCode) and serves shaped, cacheable JSON.

It provides:
  - Allow-listed GitHub REST passthrough with verbatim revalidation
  - Contribution calendar, repository catalog and README shaping
  - LeetCode contest standing and rating history
  - CDN cache directives, entity tags and a warm in-process memo
  - Persisted catalog snapshots for degraded upstream conditions`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (empty uses built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
