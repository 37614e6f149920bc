package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process PageCache used when Redis is not configured
// and as the test backend.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache creates a MemoryCache with the given default TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
	}
}

// Get returns cached page bytes, evicting the entry when expired.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores page bytes. A non-positive ttl falls back to the default.
func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Clear drops every cached page.
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	m.entries = map[string]memoryEntry{}
	m.mu.Unlock()
}
