package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	fileapp "github.com/stockflow/backend/internal/application/file"
)

var _ fileapp.ObjectStorage = (*MemoryStore)(nil)

// MemoryStore is an in-process object store used when no bucket is configured.
// URLs point at BaseURL and are not served by anything; uploads are recorded
// with Put. With AssumeUploaded set, every key that received an upload URL
// counts as uploaded, which lets the confirm flow run in development.
type MemoryStore struct {
	BaseURL        string
	AssumeUploaded bool

	mu      sync.RWMutex
	issued  map[string]bool
	objects map[string]bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore(assumeUploaded bool) *MemoryStore {
	return &MemoryStore{
		BaseURL:        "http://localhost:9000/stockflow-files",
		AssumeUploaded: assumeUploaded,
		issued:         make(map[string]bool),
		objects:        make(map[string]bool),
	}
}

func (m *MemoryStore) url(op, key string, expiresAt time.Time) string {
	q := url.Values{}
	q.Set("op", op)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return m.BaseURL + "/" + key + "?" + q.Encode()
}

// GenerateUploadURL records the key as awaiting upload
func (m *MemoryStore) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	m.mu.Lock()
	m.issued[storageKey] = true
	m.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return m.url("put", storageKey, expiresAt), expiresAt, nil
}

// GenerateDownloadURL returns a GET URL for the key
func (m *MemoryStore) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.url("get", storageKey, expiresAt), expiresAt, nil
}

// Put marks an object as uploaded
func (m *MemoryStore) Put(storageKey string) {
	m.mu.Lock()
	m.objects[storageKey] = true
	m.mu.Unlock()
}

// DeleteObject forgets the key
func (m *MemoryStore) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	delete(m.objects, storageKey)
	delete(m.issued, storageKey)
	m.mu.Unlock()
	return nil
}

// ObjectExists reports whether the key was uploaded
func (m *MemoryStore) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[storageKey] || (m.AssumeUploaded && m.issued[storageKey]), nil
}
