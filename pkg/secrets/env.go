package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables. Secret names are
// uppercased with hyphens replaced by underscores and the configured
// prefix prepended: with prefix "RELAY_SECRET_", the secret
// "github-token" reads RELAY_SECRET_GITHUB_TOKEN.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment-backed provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the mapped environment variable.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.envVarName(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret not found in environment: %s (env var: %s)", name, envVar)
	}
	return value, nil
}

// Provider returns the provider name.
func (p *EnvProvider) Provider() string { return "env" }

// Supports always returns true: the environment provider is the fallback
// of last resort.
func (p *EnvProvider) Supports(string) bool { return true }

func (p *EnvProvider) envVarName(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
