package photos

import (
	"context"
	"fmt"
	"sync"

	"gymkiosk/internal/apperr"
)

type object struct {
	data        []byte
	contentType string
}

// Memory keeps photos in process. URLs point at PathPrefix, which the API serves.
type Memory struct {
	PathPrefix string

	mu      sync.RWMutex
	objects map[string]object
}

// NewMemory creates an empty in-process store.
func NewMemory(pathPrefix string) *Memory {
	return &Memory{PathPrefix: pathPrefix, objects: make(map[string]object)}
}

func (m *Memory) URL(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("photo %s: %w", key, apperr.ErrNotFound)
	}
	return m.PathPrefix + key, nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, contentType string) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	m.objects[key] = object{data: buf, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("photo %s: %w", key, apperr.ErrNotFound)
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("photo %s: %w", key, apperr.ErrNotFound)
	}
	return obj.data, obj.contentType, nil
}
