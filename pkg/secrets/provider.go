// Package secrets loads the upstream credentials from pluggable sources.
//
// The relay needs exactly one class of secret: bearer tokens for
// authenticated upstream access. Providers are tried in priority order
// (files first, environment as fallback) and values are cached for the
// process lifetime unless a file change invalidates them.
package secrets

import "context"

// Provider retrieves secrets from a backend.
type Provider interface {
	// GetSecret retrieves a secret by name. Returns an error when the
	// secret is absent or unreadable.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the provider name (env, file).
	Provider() string

	// Supports reports whether this provider can resolve the given name.
	Supports(name string) bool
}

// RefreshableProvider can reload secrets without a restart, e.g. a
// file-based provider reacting to rotation.
type RefreshableProvider interface {
	Provider

	// Refresh drops any cached values so the next read hits the backend.
	Refresh(ctx context.Context) error
}
