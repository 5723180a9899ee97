package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a fingerprint-keyed byte cache. Entries are never evicted by
// the pipeline itself; expiry is left to whatever owns the backing store.
type Store interface {
	Get(ctx context.Context, fingerprint string) ([]byte, bool, error)
	Put(ctx context.Context, fingerprint string, data []byte) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore is the session-lifetime in-memory store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, fingerprint string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[fingerprint]
	return data, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, fingerprint string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[fingerprint] = data
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Snapshot copies out the current entries, for the periodic disk flush.
func (s *MemoryStore) Snapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// DiskStore persists entries as one file per fingerprint, so the imagery
// cache survives across sessions.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(fingerprint string) string {
	// Fingerprints are sha256 hex, safe as filenames.
	return filepath.Join(s.dir, fingerprint+".bin")
}

func (s *DiskStore) Get(_ context.Context, fingerprint string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *DiskStore) Put(_ context.Context, fingerprint string, data []byte) error {
	// Write-then-rename so a crashed write never leaves a truncated entry.
	tmp := s.path(fingerprint) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(fingerprint))
}

func (s *DiskStore) Len(_ context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bin") {
			n++
		}
	}
	return n, nil
}

// TieredStore reads through a fast front (memory) into a backing store
// (disk or redis) and writes to both.
type TieredStore struct {
	Front *MemoryStore
	Back  Store
}

func NewTieredStore(front *MemoryStore, back Store) *TieredStore {
	return &TieredStore{Front: front, Back: back}
}

func (s *TieredStore) Get(ctx context.Context, fingerprint string) ([]byte, bool, error) {
	if data, ok, _ := s.Front.Get(ctx, fingerprint); ok {
		return data, true, nil
	}
	data, ok, err := s.Back.Get(ctx, fingerprint)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = s.Front.Put(ctx, fingerprint, data)
	return data, true, nil
}

func (s *TieredStore) Put(ctx context.Context, fingerprint string, data []byte) error {
	if err := s.Back.Put(ctx, fingerprint, data); err != nil {
		return err
	}
	return s.Front.Put(ctx, fingerprint, data)
}

func (s *TieredStore) Len(ctx context.Context) (int, error) {
	return s.Back.Len(ctx)
}
