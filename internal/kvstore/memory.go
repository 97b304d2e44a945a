package kvstore

import (
	"sort"
	"sync"
)

// MemoryStore keeps everything in a map. It backs tests and ephemeral
// runs and enforces the same quota rules as SQLiteStore.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	usage int64
	quota int64
}

// NewMemoryStore creates an empty store. quota <= 0 disables the quota.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{data: make(map[string]string), quota: quota}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	return m.SetMany(map[string]string{key: value})
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		m.usage -= entrySize(key, v)
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStore) SetMany(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := make(map[string]int64, len(entries))
	for k := range entries {
		if v, ok := m.data[k]; ok {
			old[k] = entrySize(k, v)
		}
	}
	next := usageAfter(m.usage, old, entries)
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}
	for k, v := range entries {
		m.data[k] = v
	}
	m.usage = next
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if hasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage returns the bytes currently counted against the quota.
func (m *MemoryStore) Usage() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage
}
