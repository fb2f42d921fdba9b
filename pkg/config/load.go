package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RELAY_SECTION_FIELD (e.g., RELAY_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file (or start from defaults when path is empty)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config

	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format RELAY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("RELAY_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("RELAY_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
	if val := os.Getenv("RELAY_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("RELAY_SERVER_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.CORS.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitAndTrim(val)
	}

	// GitHub upstream overrides
	if val := os.Getenv("RELAY_GITHUB_API_BASE_URL"); val != "" {
		cfg.Upstreams.GitHub.APIBaseURL = val
	}
	if val := os.Getenv("RELAY_GITHUB_RAW_BASE_URL"); val != "" {
		cfg.Upstreams.GitHub.RawBaseURL = val
	}
	if val := os.Getenv("RELAY_GITHUB_DEFAULT_USER"); val != "" {
		cfg.Upstreams.GitHub.DefaultUser = val
	}
	if val := os.Getenv("RELAY_GITHUB_MAX_REPOS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Upstreams.GitHub.MaxRepos = i
		}
	}
	if val := os.Getenv("RELAY_GITHUB_MAX_READMES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Upstreams.GitHub.MaxReadmes = i
		}
	}
	if val := os.Getenv("RELAY_GITHUB_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstreams.GitHub.Timeout = d
		}
	}

	// LeetCode upstream overrides
	if val := os.Getenv("RELAY_LEETCODE_GRAPHQL_URL"); val != "" {
		cfg.Upstreams.LeetCode.GraphQLURL = val
	}
	if val := os.Getenv("RELAY_LEETCODE_DEFAULT_USER"); val != "" {
		cfg.Upstreams.LeetCode.DefaultUser = val
	}
	if val := os.Getenv("RELAY_LEETCODE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstreams.LeetCode.Timeout = d
		}
	}

	// Cache overrides
	if val := os.Getenv("RELAY_CACHE_MEMO_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.MemoTTL = d
		}
	}
	if val := os.Getenv("RELAY_CACHE_FANOUT_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.FanoutWorkers = i
		}
	}

	// Secrets overrides
	if val := os.Getenv("RELAY_SECRETS_FILE_PATH"); val != "" {
		cfg.Secrets.FilePath = val
	}
	if val := os.Getenv("RELAY_SECRETS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Secrets.Watch = b
		}
	}

	// Snapshot overrides
	if val := os.Getenv("RELAY_SNAPSHOT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Snapshot.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_SNAPSHOT_PATH"); val != "" {
		cfg.Snapshot.Path = val
	}
	if val := os.Getenv("RELAY_SNAPSHOT_REFRESH_SCHEDULE"); val != "" {
		cfg.Snapshot.RefreshSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// splitAndTrim splits a comma-separated list and trims whitespace around
// each element, dropping empties.
func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
