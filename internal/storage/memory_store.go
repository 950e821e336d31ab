package storage

import (
	"sync"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
)

// memoryStore lives for the process. Nothing expires.
type memoryStore struct {
	mu    sync.RWMutex
	blobs map[string]domain.Blob
	items map[int]struct{}
}

// NewMemoryStore returns a process-scoped Store.
func NewMemoryStore() Store {
	return &memoryStore{
		blobs: make(map[string]domain.Blob),
		items: make(map[int]struct{}),
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) PutBlob(key string, blob domain.Blob) error {
	data := append([]byte(nil), blob.Data...)
	m.mu.Lock()
	m.blobs[key] = domain.Blob{Data: data, ContentType: blob.ContentType}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Blob(key string) (domain.Blob, error) {
	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return domain.Blob{}, ErrBlobNotFound
	}
	return domain.Blob{Data: append([]byte(nil), blob.Data...), ContentType: blob.ContentType}, nil
}

func (m *memoryStore) DeleteBlob(key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) SeenItem(id int) (bool, error) {
	m.mu.RLock()
	_, ok := m.items[id]
	m.mu.RUnlock()
	return ok, nil
}

func (m *memoryStore) MarkItem(id int) error {
	m.mu.Lock()
	m.items[id] = struct{}{}
	m.mu.Unlock()
	return nil
}
