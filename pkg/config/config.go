package config

import "time"

// Config is the root configuration structure for the relay.
// It is loaded from a YAML file with optional environment variable
// overrides (RELAY_SECTION_FIELD).
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Upstreams contains configuration for the proxied third-party APIs.
	Upstreams UpstreamsConfig `yaml:"upstreams"`

	// Cache contains warm memo and fan-out pool configuration.
	Cache CacheConfig `yaml:"cache"`

	// Secrets contains credential resolution configuration.
	Secrets SecretsConfig `yaml:"secrets"`

	// Snapshot contains persisted catalog snapshot configuration.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RequestTimeout bounds total handling of a single request, including
	// upstream calls and enrichment fan-out.
	// Default: 25s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins permitted to call the relay.
	// A single "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists permitted HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists permitted request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is how long (in seconds) browsers may cache preflight results.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// UpstreamsConfig groups the upstream API adapters.
type UpstreamsConfig struct {
	// GitHub contains configuration for the GitHub REST/GraphQL adapter.
	GitHub GitHubUpstreamConfig `yaml:"github"`

	// LeetCode contains configuration for the LeetCode GraphQL adapter.
	LeetCode LeetCodeUpstreamConfig `yaml:"leetcode"`
}

// GitHubUpstreamConfig contains settings for the GitHub adapter.
type GitHubUpstreamConfig struct {
	// APIBaseURL overrides the GitHub API endpoint.
	// Default: "https://api.github.com"
	APIBaseURL string `yaml:"api_base_url"`

	// RawBaseURL overrides the raw content mirror endpoint used for
	// README fallback probing.
	// Default: "https://raw.githubusercontent.com"
	RawBaseURL string `yaml:"raw_base_url"`

	// TokenSecret names the secret holding the bearer credential.
	// Default: "github-token"
	TokenSecret string `yaml:"token_secret"`

	// DefaultUser is the GitHub login used when a request omits ?user.
	DefaultUser string `yaml:"default_user"`

	// MaxRepos caps how many repositories a catalog request fetches.
	// Default: 24
	MaxRepos int `yaml:"max_repos"`

	// MaxReadmes caps how many README documents a single catalog request
	// may fetch during enrichment.
	// Default: 8
	MaxReadmes int `yaml:"max_readmes"`

	// Timeout bounds individual upstream requests.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every upstream request.
	UserAgent string `yaml:"user_agent"`
}

// LeetCodeUpstreamConfig contains settings for the LeetCode adapter.
type LeetCodeUpstreamConfig struct {
	// GraphQLURL overrides the LeetCode GraphQL endpoint.
	// Default: "https://leetcode.com/graphql"
	GraphQLURL string `yaml:"graphql_url"`

	// DefaultUser is the LeetCode username used when a request omits ?user.
	DefaultUser string `yaml:"default_user"`

	// Timeout bounds individual upstream requests.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig contains warm memo and fan-out configuration.
type CacheConfig struct {
	// MemoTTL bounds how long a memoized response may serve hits before
	// the next request refetches from the upstream.
	// Default: 10m
	MemoTTL time.Duration `yaml:"memo_ttl"`

	// FanoutWorkers bounds concurrent per-repository enrichment calls.
	// Default: 8
	FanoutWorkers int `yaml:"fanout_workers"`
}

// SecretsConfig contains credential resolution configuration.
type SecretsConfig struct {
	// FilePath is an optional directory containing one file per secret
	// (Kubernetes-style mounts). Empty disables the file provider.
	FilePath string `yaml:"file_path"`

	// Watch reloads file-based secrets when they rotate on disk.
	Watch bool `yaml:"watch"`

	// EnvPrefix namespaces environment-variable secrets.
	// Default: "RELAY_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`
}

// SnapshotConfig contains persisted catalog snapshot configuration.
type SnapshotConfig struct {
	// Enabled controls whether catalog snapshots are recorded and served
	// as a degraded fallback when the upstream is unreachable.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "data/snapshots.db"
	Path string `yaml:"path"`

	// RefreshSchedule is a cron expression for background catalog
	// refreshes. Empty disables the scheduler.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// Keep bounds the number of retained snapshots per user.
	// Default: 10
	Keep int `yaml:"keep"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics handler is mounted at.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this process in exported traces.
	// Default: "folio-relay"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
