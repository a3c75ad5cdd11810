// Package file loads and persists server configuration from a TOML
// file, with environment-variable overrides and optional hot reload of
// the file through fsnotify.
package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

// Store is a file-based configuration store using TOML.
type Store struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.workplace-mcp/config.toml.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".workplace-mcp")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		cfg:      DefaultConfig(),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Load reads the TOML file and applies environment overrides. A missing
// file is not an error; defaults plus environment apply.
func (s *Store) Load() error {
	cfg := DefaultConfig()

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No config file yet - that's fine, start from defaults
	case err != nil:
		return err
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return err
		}
	}

	applyEnv(&cfg)

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Save persists the current configuration to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := toml.Marshal(s.cfg)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	// Write with restricted permissions: the file holds API tokens
	return os.WriteFile(s.filePath, data, 0600)
}

// Update applies fn to the configuration under the write lock and
// persists the result.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	fn(&s.cfg)
	s.mu.Unlock()
	return s.Save()
}

// Watch reloads the configuration whenever the file changes on disk and
// then calls onReload with the new configuration. Call Close to stop.
func (s *Store) Watch(onReload func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors replace the file on
	// save, which drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return err
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.Load(); err != nil {
					logger.Warn("config reload failed: %v", err)
					continue
				}
				logger.Info("configuration reloaded from %s", s.filePath)
				if onReload != nil {
					onReload(s.Config())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error: %v", err)
			case <-s.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the file watcher if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}
