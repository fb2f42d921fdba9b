package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultRequestTimeout  = 25 * time.Second

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// GitHub upstream defaults
	DefaultGitHubAPIBaseURL  = "https://api.github.com"
	DefaultGitHubRawBaseURL  = "https://raw.githubusercontent.com"
	DefaultGitHubTokenSecret = "github-token"
	DefaultGitHubMaxRepos    = 24
	DefaultGitHubMaxReadmes  = 8
	DefaultUpstreamTimeout   = 15 * time.Second
	DefaultUserAgent         = "folio-relay"

	// LeetCode upstream defaults
	DefaultLeetCodeGraphQLURL = "https://leetcode.com/graphql"

	// Cache defaults
	DefaultMemoTTL       = 10 * time.Minute
	DefaultFanoutWorkers = 8

	// Secrets defaults
	DefaultSecretsEnvPrefix = "RELAY_SECRET_"

	// Snapshot defaults
	DefaultSnapshotEnabled = true
	DefaultSnapshotPath    = "data/snapshots.db"
	DefaultSnapshotKeep    = 10

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultTracingEnabled     = false
	DefaultTracingServiceName = "folio-relay"
	DefaultTracingSampleRatio = 1.0
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}

	// CORS defaults
	if cfg.Server.CORS.AllowedOrigins == nil {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.CORS.AllowedMethods == nil {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if cfg.Server.CORS.AllowedHeaders == nil {
		cfg.Server.CORS.AllowedHeaders = []string{"Accept", "Content-Type", "If-None-Match"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// GitHub upstream defaults
	if cfg.Upstreams.GitHub.APIBaseURL == "" {
		cfg.Upstreams.GitHub.APIBaseURL = DefaultGitHubAPIBaseURL
	}
	if cfg.Upstreams.GitHub.RawBaseURL == "" {
		cfg.Upstreams.GitHub.RawBaseURL = DefaultGitHubRawBaseURL
	}
	if cfg.Upstreams.GitHub.TokenSecret == "" {
		cfg.Upstreams.GitHub.TokenSecret = DefaultGitHubTokenSecret
	}
	if cfg.Upstreams.GitHub.MaxRepos == 0 {
		cfg.Upstreams.GitHub.MaxRepos = DefaultGitHubMaxRepos
	}
	if cfg.Upstreams.GitHub.MaxReadmes == 0 {
		cfg.Upstreams.GitHub.MaxReadmes = DefaultGitHubMaxReadmes
	}
	if cfg.Upstreams.GitHub.Timeout == 0 {
		cfg.Upstreams.GitHub.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstreams.GitHub.UserAgent == "" {
		cfg.Upstreams.GitHub.UserAgent = DefaultUserAgent
	}

	// LeetCode upstream defaults
	if cfg.Upstreams.LeetCode.GraphQLURL == "" {
		cfg.Upstreams.LeetCode.GraphQLURL = DefaultLeetCodeGraphQLURL
	}
	if cfg.Upstreams.LeetCode.Timeout == 0 {
		cfg.Upstreams.LeetCode.Timeout = DefaultUpstreamTimeout
	}

	// Cache defaults
	if cfg.Cache.MemoTTL == 0 {
		cfg.Cache.MemoTTL = DefaultMemoTTL
	}
	if cfg.Cache.FanoutWorkers == 0 {
		cfg.Cache.FanoutWorkers = DefaultFanoutWorkers
	}

	// Secrets defaults
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}

	// Snapshot defaults
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = DefaultSnapshotPath
	}
	if cfg.Snapshot.Keep == 0 {
		cfg.Snapshot.Keep = DefaultSnapshotKeep
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}

// Default returns a fully defaulted configuration, equivalent to loading
// an empty YAML file. CORS and metrics default to enabled; snapshots
// default to enabled as well.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Snapshot.Enabled = DefaultSnapshotEnabled
	ApplyDefaults(cfg)
	return cfg
}
