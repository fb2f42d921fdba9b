package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstreams(&cfg.Upstreams)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateSnapshot(&cfg.Snapshot)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	if cfg.CORS.Enabled && len(cfg.CORS.AllowedOrigins) == 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.allowed_origins",
			Message: "at least one allowed origin is required when CORS is enabled",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateUpstreams validates upstream adapter configuration.
func validateUpstreams(cfg *UpstreamsConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateBaseURL("upstreams.github.api_base_url", cfg.GitHub.APIBaseURL)...)
	errs = append(errs, validateBaseURL("upstreams.github.raw_base_url", cfg.GitHub.RawBaseURL)...)
	errs = append(errs, validateBaseURL("upstreams.leetcode.graphql_url", cfg.LeetCode.GraphQLURL)...)

	if cfg.GitHub.MaxRepos < 1 || cfg.GitHub.MaxRepos > 100 {
		errs = append(errs, FieldError{
			Field:   "upstreams.github.max_repos",
			Message: "max repos must be between 1 and 100",
		})
	}
	if cfg.GitHub.MaxReadmes < 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.github.max_readmes",
			Message: "max readmes must be non-negative",
		})
	}
	if cfg.GitHub.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.github.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.LeetCode.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.leetcode.timeout",
			Message: "timeout must be positive",
		})
	}

	return errs
}

// validateBaseURL checks that a URL is parseable and uses http or https.
func validateBaseURL(field, raw string) []FieldError {
	if raw == "" {
		return []FieldError{{Field: field, Message: "URL is required"}}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return []FieldError{{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []FieldError{{Field: field, Message: "URL scheme must be http or https"}}
	}
	if u.Host == "" {
		return []FieldError{{Field: field, Message: "URL host is required"}}
	}
	return nil
}

// validateCache validates warm memo and fan-out configuration.
func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	if cfg.MemoTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.memo_ttl",
			Message: "memo TTL must be non-negative",
		})
	}
	if cfg.FanoutWorkers < 1 {
		errs = append(errs, FieldError{
			Field:   "cache.fanout_workers",
			Message: "fanout workers must be at least 1",
		})
	}

	return errs
}

// validateSnapshot validates snapshot store configuration.
func validateSnapshot(cfg *SnapshotConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "snapshot.path",
			Message: "path is required when snapshots are enabled",
		})
	}
	if cfg.Keep < 1 {
		errs = append(errs, FieldError{
			Field:   "snapshot.keep",
			Message: "keep must be at least 1",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
