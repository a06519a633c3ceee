package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Package storage remembers which lookup snapshots were already published.

// Store tracks snapshot keys (target id + content hash).
type Store interface {
	Close() error
	SeenSnapshot(key string) (bool, error)
	MarkSnapshot(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// SnapshotKey joins a target id and a snapshot hash into a store key.
func SnapshotKey(targetID, hash string) string {
	return targetID + ":" + hash
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) SeenSnapshot(string) (bool, error) { return false, nil }
func (noopStore) MarkSnapshot(string) error         { return nil }

// memoryStore keeps expiries in a map; contents are lost on restart.
type memoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		ttl:     opts.SnapshotTTL,
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) SeenSnapshot(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[key]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.expires, key)
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) MarkSnapshot(key string) error {
	m.mu.Lock()
	m.expires[key] = m.now().Add(m.ttl)
	m.mu.Unlock()
	return nil
}
