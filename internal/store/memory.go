package store

import "sync"

// MemoryKV holds blobs for a single process lifetime. Used in tests and as
// the fallback when the sqlite file cannot be opened (the client then runs
// with no cross-session persistence, matching disabled-storage hosts).
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
