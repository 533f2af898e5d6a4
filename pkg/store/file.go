package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/maypok86/otter/v2"
)

const stateFile = "vibetime-state.json"

// FileStore keeps every key in an otter cache and rewrites a single JSON file
// on each mutation. With an empty directory it is memory-only.
type FileStore struct {
	cache  *otter.Cache[string, string]
	logger *slog.Logger
	dir    string
	mu     sync.Mutex
}

// NewFileStore opens (or creates) the state file under dir.
// A corrupt state file is logged and ignored; the next write replaces it.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		cache: otter.Must(&otter.Options[string, string]{
			MaximumSize:     10_000,
			InitialCapacity: 16,
		}),
		dir:    dir,
		logger: logger,
	}
	if dir == "" {
		logger.Debug("state store is memory-only")
		return s, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	if err := s.loadFromDisk(); err != nil {
		logger.Warn("discarding unreadable state file", "path", s.path(), "error", err)
	}
	logger.Debug("state store opened", "path", s.path(), "keys", s.cache.EstimatedSize())
	return s, nil
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, stateFile)
}

// Get returns the value for key or ErrNotFound.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.GetIfPresent(key)
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Set stores value and persists the full key set.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, string(value))
	return s.saveToDisk()
}

// Delete removes key and persists the full key set.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Invalidate(key)
	return s.saveToDisk()
}

// Close flushes nothing: every mutation is already on disk.
func (*FileStore) Close() error {
	return nil
}

func (s *FileStore) loadFromDisk() error {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading state file: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decoding state file: %w", err)
	}
	for k, v := range entries {
		s.cache.Set(k, v)
	}
	return nil
}

// saveToDisk writes a temp file and renames it over the old one. Caller holds mu.
func (s *FileStore) saveToDisk() error {
	if s.dir == "" {
		return nil
	}
	entries := make(map[string]string)
	for k, v := range s.cache.All() {
		entries[k] = v
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Debug("failed to remove temp state file", "error", rmErr)
		}
		return fmt.Errorf("replacing state file: %w", err)
	}
	s.logger.Debug("state saved", "keys", len(entries), "path", s.path())
	return nil
}
