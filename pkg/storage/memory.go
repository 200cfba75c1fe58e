package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Memory keeps objects in a map. For tests and local runs without a bucket.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

type object struct {
	data        []byte
	contentType string
}

// NewMemory returns an empty store whose URLs are baseURL + "/" + key.
func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string]object)}
}

// Put implements Storage.
func (m *Memory) Put(_ context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := applyOptions(ACLPublicRead, opts)
	contentType, body, key, err := prepare(r, size, o)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ErrReadFailed
	}

	m.mu.Lock()
	m.objects[key] = object{data: data, contentType: contentType}
	m.mu.Unlock()

	return &FileInfo{
		Key:         key,
		URL:         m.URL(key),
		Size:        int64(len(data)),
		ContentType: contentType,
		ACL:         o.acl,
	}, nil
}

// Delete implements Storage.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// URL implements Storage.
func (m *Memory) URL(key string) string {
	return m.baseURL + "/" + key
}

// Get returns a stored object's bytes and content type.
func (m *Memory) Get(key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

var _ Storage = (*Memory)(nil)
