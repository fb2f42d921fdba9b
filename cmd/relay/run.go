package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"folio-hq/relay/pkg/config"
	"folio-hq/relay/pkg/proxy/handlers"
	"folio-hq/relay/pkg/server"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/telemetry/logging"
	"folio-hq/relay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The server listens on the configured address and serves shaped, cacheable
JSON built from GitHub and LeetCode data.

Examples:
  # Start with built-in defaults
  relay run

  # Start with a custom config
  relay run --config /etc/relay/config.yaml

  # Override the listen address
  relay run --listen 0.0.0.0:8080

  # Validate the config without starting
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to shut down tracer", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := startScheduler(ctx, cfg, svc, logger); sched != nil {
		defer sched.Stop()
	}

	srv := server.NewServer(&cfg.Server, cfg.Telemetry.Metrics, svc, tracer.Tracer(), logger)

	logger.Info("relay starting",
		"address", cfg.Server.ListenAddress,
		"github_user", cfg.Upstreams.GitHub.DefaultUser,
		"snapshots", cfg.Snapshot.Enabled,
		"metrics", cfg.Telemetry.Metrics.Enabled,
		"tracing", cfg.Telemetry.Tracing.Enabled,
	)

	// Start blocks until SIGTERM/SIGINT or context cancellation, then
	// drains gracefully.
	return srv.Start(ctx)
}

// startScheduler launches the background catalog refresh when a schedule
// is configured. A refresh failure is logged and retried at the next
// tick; it never takes the process down.
func startScheduler(ctx context.Context, cfg *config.Config, svc *handlers.Service, logger *slog.Logger) *snapshot.Scheduler {
	if cfg.Snapshot.RefreshSchedule == "" || cfg.Upstreams.GitHub.DefaultUser == "" {
		return nil
	}

	catalog := handlers.NewCatalogHandler(svc)
	sched := snapshot.NewScheduler(cfg.Snapshot.RefreshSchedule, func(ctx context.Context) error {
		return catalog.Refresh(ctx, cfg.Upstreams.GitHub.DefaultUser)
	})
	if err := sched.Start(ctx); err != nil {
		logger.Warn("failed to start catalog refresh scheduler", "error", err)
		return nil
	}
	return sched
}
