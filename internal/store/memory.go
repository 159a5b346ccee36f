package store

import (
	"bytes"
	"sync"
)

// MemoryRecords keeps records in a map. It is safe for concurrent use.
type MemoryRecords struct {
	mu      sync.RWMutex
	records map[string][]byte
}

var _ RecordStore = (*MemoryRecords)(nil)

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string][]byte)}
}

func (m *MemoryRecords) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(data), nil
}

func (m *MemoryRecords) Put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = bytes.Clone(data)
	return nil
}

func (m *MemoryRecords) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, name)
	return nil
}

func (m *MemoryRecords) Close() error { return nil }
