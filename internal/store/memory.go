package store

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/euring/internal/core"
)

// Memory keeps encoded entries in a map. Entries are copied on the way in
// and out, so callers never share state with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context) ([]core.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]core.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		e, err := decodeEntry(id, m.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) Save(ctx context.Context, e core.CatalogEntry) error {
	doc, err := encodeEntry(e)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[e.Version.ID] = doc
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
