// Package snapshot owns persistence of weekly pipeline results. The manager
// fronts a durable store with a small in-memory TTL layer for read-hot paths
// and provides the latest-snapshot fallback used when a fresh run comes back
// empty.
package snapshot

import (
	"sync"
	"time"

	"github.com/deusflow/ainews/internal/feed"
)

// Store is durable key-value persistence for snapshots.
type Store interface {
	// Get returns the snapshot for a period key, or false when absent.
	Get(key string) (*feed.Snapshot, bool, error)
	// Put persists/overwrites the snapshot for a key. Last writer wins.
	Put(key string, snap *feed.Snapshot) error
	// Latest returns the most recently created snapshot across all keys.
	Latest() (*feed.Snapshot, bool, error)
}

// Manager combines the durable store with a read-through memory layer.
type Manager struct {
	store  Store
	memory *memoryLayer
}

func NewManager(store Store, memoryTTL time.Duration) *Manager {
	return &Manager{store: store, memory: newMemoryLayer(memoryTTL)}
}

// Get returns the snapshot for the period key unless forceRefresh is set,
// in which case the caller is expected to re-run the pipeline.
func (m *Manager) Get(key string, forceRefresh bool) (*feed.Snapshot, bool, error) {
	if forceRefresh {
		return nil, false, nil
	}
	if snap, ok := m.memory.get(key); ok {
		return snap, true, nil
	}
	snap, ok, err := m.store.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	m.memory.put(key, snap)
	return snap, true, nil
}

// Put persists the snapshot and refreshes the memory layer. The memory layer
// is updated even when the durable write fails, so the freshly computed
// result still serves subsequent requests.
func (m *Manager) Put(key string, snap *feed.Snapshot) error {
	m.memory.put(key, snap)
	return m.store.Put(key, snap)
}

// Latest is the serve-something-rather-than-nothing fallback.
func (m *Manager) Latest() (*feed.Snapshot, bool, error) {
	return m.store.Latest()
}

// memoryLayer is a mutex-guarded TTL map. Expired entries are dropped on read.
type memoryLayer struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
}

type memoryItem struct {
	snap      *feed.Snapshot
	expiresAt time.Time
}

func newMemoryLayer(ttl time.Duration) *memoryLayer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &memoryLayer{ttl: ttl, items: make(map[string]memoryItem)}
}

func (c *memoryLayer) get(key string) (*feed.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return item.snap, true
}

func (c *memoryLayer) put(key string, snap *feed.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = memoryItem{snap: snap, expiresAt: time.Now().Add(c.ttl)}
}
