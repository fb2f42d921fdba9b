package config

import "sync"

// The process-wide configuration. The relay loads it once per subcommand
// invocation (run, prefetch, validate all funnel through Initialize) and
// treats it as read-only afterwards; secrets are the only values that
// rotate at runtime, and they live behind pkg/secrets, not here.
var global struct {
	mu   sync.RWMutex
	once sync.Once
	cfg  *Config
}

// Initialize loads the configuration from path, applies RELAY_* environment
// overrides, validates it, and installs it as the process-wide instance.
// An empty path starts from the built-in defaults. Only the first call
// loads; later calls return the first call's error state.
func Initialize(path string) error {
	var initErr error
	global.once.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		global.mu.Lock()
		global.cfg = cfg
		global.mu.Unlock()
	})
	return initErr
}

// GetConfig returns the installed configuration, or nil before a
// successful Initialize. Handlers and services take their Config by
// injection; this accessor exists for the command entry points.
func GetConfig() *Config {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.cfg
}

// ResetForTesting clears the installed configuration and re-arms
// Initialize so a test can load a different file. Not for production use.
func ResetForTesting() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.cfg = nil
	global.once = sync.Once{}
}
