package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
)

// Object is a blob kept by MemoryStore.
type Object struct {
	Key         string
	ContentType string
	Content     []byte
}

// MemoryStore keeps blobs in memory. Used in dev & tests.
type MemoryStore struct {
	mu        sync.RWMutex
	objects   map[string]Object
	keyPrefix string
	baseURL   string
}

var _ core.BlobStore = (*MemoryStore)(nil)

func NewMemoryStore(conf core.StorageConfig) *MemoryStore {
	baseURL := conf.PublicBaseURL
	if baseURL == "" {
		baseURL = "memory://blobs"
	}
	return &MemoryStore{
		objects:   make(map[string]Object),
		keyPrefix: conf.KeyPrefix,
		baseURL:   baseURL,
	}
}

func (s *MemoryStore) Upload(_ context.Context, blob core.Blob) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, blob.Body); err != nil {
		return "", errors.Wrap(err, "reading blob")
	}

	key := objectKey(s.keyPrefix, blob.Filename)
	url := s.baseURL + "/" + key

	s.mu.Lock()
	s.objects[url] = Object{Key: key, ContentType: blob.ContentType, Content: buf.Bytes()}
	s.mu.Unlock()
	return url, nil
}

// Get returns the object served at url.
func (s *MemoryStore) Get(url string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[url]
	return obj, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
