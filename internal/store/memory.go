// internal/store/memory.go
package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Dispatcher that keeps documents in nested
// maps. It backs unit tests and local development runs without a Mongo
// deployment.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]interface{}
	applied     []WriteIntent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]interface{}),
	}
}

func (m *MemoryStore) Dispatch(_ context.Context, intents ...WriteIntent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, intent := range intents {
		col, ok := m.collections[intent.Collection]
		if !ok {
			col = make(map[string]interface{})
			m.collections[intent.Collection] = col
		}

		switch intent.Op {
		case OpUpsert:
			col[intent.ID] = intent.Doc
		case OpPatch:
			fields, ok := intent.Doc.(map[string]interface{})
			if !ok {
				col[intent.ID] = intent.Doc
				break
			}
			existing, ok := col[intent.ID].(map[string]interface{})
			if !ok {
				existing = make(map[string]interface{})
				col[intent.ID] = existing
			}
			for k, v := range fields {
				existing[k] = v
			}
		case OpDelete:
			delete(col, intent.ID)
		}

		m.applied = append(m.applied, intent)
	}
}

// Get returns the current document, or nil if absent.
func (m *MemoryStore) Get(collection, id string) interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil
	}
	return col[id]
}

// Applied returns every intent dispatched so far, in order.
func (m *MemoryStore) Applied() []WriteIntent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]WriteIntent, len(m.applied))
	copy(out, m.applied)
	return out
}
