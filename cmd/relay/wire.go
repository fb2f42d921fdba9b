package main

import (
	"fmt"
	"log/slog"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/config"
	"folio-hq/relay/pkg/proxy/handlers"
	"folio-hq/relay/pkg/secrets"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/telemetry/metrics"
	"folio-hq/relay/pkg/upstream"
)

// buildSecrets assembles the credential resolution chain: environment
// variables always, a file-mount provider when configured.
func buildSecrets(cfg *config.SecretsConfig) (*secrets.Manager, error) {
	providers := []secrets.Provider{secrets.NewEnvProvider(cfg.EnvPrefix)}
	if cfg.FilePath != "" {
		fp, err := secrets.NewFileProvider(cfg.FilePath, cfg.Watch)
		if err != nil {
			return nil, fmt.Errorf("failed to create file secret provider: %w", err)
		}
		providers = append(providers, fp)
	}
	return secrets.NewManager(providers...), nil
}

// buildService wires the handler service from configuration: the upstream
// adapters, the warm memo, the freshness policy, and optionally the
// snapshot store. The returned cleanup closes everything the service
// opened.
func buildService(cfg *config.Config, logger *slog.Logger) (*handlers.Service, func(), error) {
	manager, err := buildSecrets(&cfg.Secrets)
	if err != nil {
		return nil, nil, err
	}

	gh := upstream.NewGitHub(upstream.GitHubConfig{
		APIBaseURL: cfg.Upstreams.GitHub.APIBaseURL,
		RawBaseURL: cfg.Upstreams.GitHub.RawBaseURL,
		Client: upstream.ClientConfig{
			Timeout:   cfg.Upstreams.GitHub.Timeout,
			UserAgent: cfg.Upstreams.GitHub.UserAgent,
		},
	}, manager.Source(cfg.Upstreams.GitHub.TokenSecret))

	lc := upstream.NewLeetCode(upstream.LeetCodeConfig{
		GraphQLURL: cfg.Upstreams.LeetCode.GraphQLURL,
		Client: upstream.ClientConfig{
			Timeout: cfg.Upstreams.LeetCode.Timeout,
		},
	})

	var store *snapshot.Store
	if cfg.Snapshot.Enabled {
		store, err = snapshot.NewStore(snapshot.StoreConfig{
			Path: cfg.Snapshot.Path,
			Keep: cfg.Snapshot.Keep,
		})
		if err != nil {
			gh.Close()
			lc.Close()
			return nil, nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
	}

	clock := cache.SystemClock{}
	svc := &handlers.Service{
		GitHub:              gh,
		LeetCode:            lc,
		Memo:                cache.NewWarmMemo(clock),
		Versions:            cache.NewAssetVersion(clock),
		Policy:              cache.NewFreshnessPolicy(cfg.Cache.MemoTTL),
		Snapshots:           store,
		Metrics:             metrics.NewCollector(cfg.Telemetry.Metrics.Enabled),
		Logger:              logger,
		Clock:               clock,
		DefaultGitHubUser:   cfg.Upstreams.GitHub.DefaultUser,
		DefaultLeetCodeUser: cfg.Upstreams.LeetCode.DefaultUser,
		MaxRepos:            cfg.Upstreams.GitHub.MaxRepos,
		MaxReadmes:          cfg.Upstreams.GitHub.MaxReadmes,
		FanoutWorkers:       cfg.Cache.FanoutWorkers,
	}

	cleanup := func() {
		gh.Close()
		lc.Close()
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close snapshot store", "error", err)
			}
		}
	}
	return svc, cleanup, nil
}
