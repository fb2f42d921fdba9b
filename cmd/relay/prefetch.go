package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"folio-hq/relay/pkg/config"
	"folio-hq/relay/pkg/proxy/handlers"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/telemetry/logging"
)

var prefetchFlags struct {
	user        string
	out         string
	topics      bool
	withReadmes bool
	timeout     time.Duration
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Build a catalog JSON file ahead of time",
	Long: `Fetch and shape the repository catalog once and write the result to a
file. Static deploys bake the output into the site so the first page view
never waits on GitHub.

The output is byte-identical to what the /catalog endpoint would serve.

Examples:
  # Write the default user's catalog
  relay prefetch --out public/catalog.json

  # A specific user, with README content inlined
  relay prefetch --user octocat --with-readmes --out catalog.json`,
	RunE: runPrefetch,
}

func init() {
	rootCmd.AddCommand(prefetchCmd)

	prefetchCmd.Flags().StringVarP(&prefetchFlags.user, "user", "u", "", "GitHub login (defaults to the configured user)")
	prefetchCmd.Flags().StringVarP(&prefetchFlags.out, "out", "o", "catalog.json", "output file path")
	prefetchCmd.Flags().BoolVar(&prefetchFlags.topics, "topics", false, "backfill topics from the REST endpoint")
	prefetchCmd.Flags().BoolVar(&prefetchFlags.withReadmes, "with-readmes", false, "inline README content for the leading repositories")
	prefetchCmd.Flags().DurationVar(&prefetchFlags.timeout, "timeout", 60*time.Second, "overall fetch timeout")
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	user := prefetchFlags.user
	if user == "" {
		user = cfg.Upstreams.GitHub.DefaultUser
	}
	if user == "" {
		return fmt.Errorf("no user given: pass --user or configure upstreams.github.default_user")
	}

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), prefetchFlags.timeout)
	defer cancel()

	catalog := handlers.NewCatalogHandler(svc)
	body, etag, err := catalog.Build(ctx, user, prefetchFlags.topics, prefetchFlags.withReadmes)
	if err != nil {
		return fmt.Errorf("failed to build catalog for %s: %w", user, err)
	}

	if svc.Snapshots != nil {
		rec := snapshot.Record{User: user, Body: body, ETag: etag, FetchedAt: time.Now()}
		if err := svc.Snapshots.Save(ctx, rec); err != nil {
			logger.Warn("failed to persist prefetched catalog", "user", user, "error", err)
		}
	}

	if dir := filepath.Dir(prefetchFlags.out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(prefetchFlags.out, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", prefetchFlags.out, err)
	}

	fmt.Printf("✓ Wrote %s (%d bytes) for %s\n", prefetchFlags.out, len(body), user)
	return nil
}
