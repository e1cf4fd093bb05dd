package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kalagasite/internal/content"
)

// MemoryStore keeps documents in process memory. Values are deep-copied on
// the way in and out so callers never share nodes with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]content.Tree
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]content.Tree)}
}

func (m *MemoryStore) Get(_ context.Context, collection, key string) (content.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][key]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, ErrNotFound)
	}
	return content.Clone(doc), nil
}

func (m *MemoryStore) Set(_ context.Context, collection, key string, value content.Tree) error {
	cloned, err := content.NormalizeTree(value)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, key, cloned)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, collection, key string, value content.Tree) error {
	cloned, err := content.NormalizeTree(value)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.data[collection][key]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, key, ErrNotFound)
	}
	m.put(collection, key, mergeTopLevel(existing, cloned))
	return nil
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]Document, 0, len(m.data[collection]))
	for id, doc := range m.data[collection] {
		docs = append(docs, Document{ID: id, Fields: content.Clone(doc)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, value content.Tree) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection][key]; !ok {
		return fmt.Errorf("delete %s/%s: %w", collection, key, ErrNotFound)
	}
	delete(m.data[collection], key)
	return nil
}

func (m *MemoryStore) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	if !validField(field) {
		return nil, fmt.Errorf("query %s: invalid order field %q", collection, field)
	}
	docs, err := m.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return sortDocuments(docs, field, dir), nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) put(collection, key string, value content.Tree) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]content.Tree)
	}
	m.data[collection][key] = value
}
