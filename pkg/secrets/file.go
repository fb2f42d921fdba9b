package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider loads secrets from individual files in a directory,
// Kubernetes-style: one file per secret, named after the secret.
//
// File permissions must be 0600 or 0400. When watching is enabled the
// provider drops its cache on any write or create in the directory, so
// rotated tokens take effect without a restart.
type FileProvider struct {
	BasePath string

	mu      sync.RWMutex
	cache   map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewFileProvider creates a file-backed provider rooted at basePath.
func NewFileProvider(basePath string, watch bool) (*FileProvider, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", basePath)
	}

	p := &FileProvider{
		BasePath: basePath,
		cache:    make(map[string]string),
		stopCh:   make(chan struct{}),
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(basePath); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}
		p.watcher = watcher
		go p.watchLoop()

		slog.Info("file secret provider watching for rotation", "path", basePath)
	}

	return p, nil
}

// GetSecret reads a secret file, validating its permissions.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	if value, ok := p.cache[name]; ok {
		p.mu.RUnlock()
		return value, nil
	}
	p.mu.RUnlock()

	path := filepath.Join(p.BasePath, filepath.Base(name))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("secret file not found: %s", name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if mode := info.Mode().Perm(); mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value := strings.TrimSpace(string(data))

	p.mu.Lock()
	p.cache[name] = value
	p.mu.Unlock()

	return value, nil
}

// Provider returns the provider name.
func (p *FileProvider) Provider() string { return "file" }

// Supports reports whether a file with that name exists.
func (p *FileProvider) Supports(name string) bool {
	info, err := os.Stat(filepath.Join(p.BasePath, filepath.Base(name)))
	return err == nil && info.Mode().IsRegular()
}

// Refresh drops the cache, forcing re-reads from disk.
func (p *FileProvider) Refresh(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]string)
	return nil
}

// Close stops the watcher.
func (p *FileProvider) Close() error {
	if p.watcher != nil {
		close(p.stopCh)
		return p.watcher.Close()
	}
	return nil
}

func (p *FileProvider) watchLoop() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				slog.Debug("secret file changed, dropping cache",
					"file", filepath.Base(event.Name),
					"op", event.Op.String(),
				)
				_ = p.Refresh(context.Background())
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("secret watcher error", "error", err)
		case <-p.stopCh:
			return
		}
	}
}
