// Package cache implements the disk-backed TTL cache for parsed results.
//
// The store is a freshness optimization, not a system of record: reads
// fail soft (missing file, corrupt JSON, and absent keys all count as a
// miss) and stale entries are simply overwritten by the next write.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

type entry struct {
	CachedAt time.Time               `json:"cached_at"`
	Data     dashboard.ParsedMetrics `json:"data"`
}

// Store persists a key -> (timestamp, metrics) map as a single JSON
// file. Writes go through one read-modify-write critical section so
// concurrent workers cannot interleave partial writes.
type Store struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// New creates a store backed by the given file path. The file does not
// need to exist yet.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Get returns the cached metrics for key when the entry is younger than
// ttl. Any read or decode problem is treated as a miss.
func (s *Store) Get(key string, ttl time.Duration) (dashboard.ParsedMetrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	item, ok := entries[key]
	if !ok {
		return dashboard.ParsedMetrics{}, false
	}
	if s.now().Sub(item.CachedAt) > ttl {
		return dashboard.ParsedMetrics{}, false
	}
	return item.Data, true
}

// Set records the metrics for key, stamped with the current time.
func (s *Store) Set(key string, value dashboard.ParsedMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = entry{CachedAt: s.now(), Data: value}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	return nil
}

// load reads the whole store, tolerating a missing or corrupt file.
// Callers must hold s.mu.
func (s *Store) load() map[string]entry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]entry{}
	}
	entries := map[string]entry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return map[string]entry{}
	}
	return entries
}
