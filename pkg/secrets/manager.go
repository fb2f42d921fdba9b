package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager orchestrates providers with priority-based fallback: the first
// provider that supports a name and returns a value wins. Values are
// cached until Refresh.
type Manager struct {
	providers []Provider

	mu    sync.RWMutex
	cache map[string]string
}

// NewManager creates a manager trying providers in the given order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{
		providers: providers,
		cache:     make(map[string]string),
	}
}

// GetSecret resolves a secret through the provider chain.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	if value, ok := m.cache[name]; ok {
		m.mu.RUnlock()
		return value, nil
	}
	m.mu.RUnlock()

	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}
		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}

		m.mu.Lock()
		m.cache[name] = value
		m.mu.Unlock()

		slog.Debug("secret resolved",
			"provider", provider.Provider(),
			"name", redactName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("secret not found: %q", name)
}

// Refresh reloads refreshable providers and clears the manager cache.
func (m *Manager) Refresh(ctx context.Context) error {
	for _, provider := range m.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh provider %s: %w", provider.Provider(), err)
		}
	}

	m.mu.Lock()
	m.cache = make(map[string]string)
	m.mu.Unlock()
	return nil
}

// NamedSecret adapts one managed secret to the upstream TokenSource shape.
type NamedSecret struct {
	manager *Manager
	name    string
}

// Source returns a token source bound to the named secret. Resolution
// errors surface to the caller, which treats an unresolvable credential
// as a configuration error.
func (m *Manager) Source(name string) *NamedSecret {
	return &NamedSecret{manager: m, name: name}
}

// Token resolves the bound secret.
func (s *NamedSecret) Token(ctx context.Context) (string, error) {
	return s.manager.GetSecret(ctx, s.name)
}

// redactName keeps secret names out of logs while staying debuggable.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
