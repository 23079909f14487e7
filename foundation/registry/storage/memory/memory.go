// Package memory implements the ability to read and write the registry state
// to memory using a map.
package memory

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ardanlabs/registry/foundation/registry/database"
)

// Memory represents the implementation for reading and storing the registry
// state in memory. This implements the database.Storage interface.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Get returns a copy of the value stored for the key.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.data[string(key)]
	if !exists {
		return nil, database.ErrNotFound
	}

	return bytes.Clone(value), nil
}

// Has reports whether the key holds a value.
func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.data[string(key)]
	return exists, nil
}

// ForEach calls fn for every key with the prefix in ascending key order.
// The writer lock is not held while fn runs, so fn sees a snapshot of the
// keys taken when the walk started.
func (m *Memory) ForEach(prefix []byte, fn func(key []byte, value []byte) error) error {
	type pair struct {
		key   []byte
		value []byte
	}

	m.mu.RLock()
	pairs := make([]pair, 0, len(m.data))
	for k, v := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			pairs = append(pairs, pair{key: []byte(k), value: bytes.Clone(v)})
		}
	}
	m.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i].key, pairs[j].key) < 0
	})

	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}

	return nil
}

// Write applies all the puts under a single lock so readers never observe
// part of the set.
func (m *Memory) Write(puts []database.Put) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range puts {
		m.data[string(p.Key)] = bytes.Clone(p.Value)
	}

	return nil
}
