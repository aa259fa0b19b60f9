package storage

import (
	"context"
	"io"
	"sync"
)

// Object is a stored blob
type Object struct {
	Data        []byte
	ContentType string
}

// Memory keeps objects in process memory. Used when no bucket is configured.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &Memory{objects: make(map[string]Object), baseURL: baseURL}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return &Error{Op: "put", Key: key, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: data, ContentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the object stored under key
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *Memory) URL(key string) string {
	return joinURL(m.baseURL, key)
}

func (m *Memory) KeyFromURL(url string) (string, bool) {
	return splitURL(m.baseURL, url)
}
