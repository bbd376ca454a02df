package testutil

import (
	"context"
	"sync"

	ierr "github.com/formstamp/formstamp/internal/errors"
	"github.com/formstamp/formstamp/internal/storage"
)

// InMemoryBlobStore implements storage.BlobStore on a map, for tests.
type InMemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// FailGetKeys makes Get fail for specific keys, simulating a stale
	// or corrupted blob.
	FailGetKeys map[string]bool

	// PutErr, when set, makes every Put fail.
	PutErr error
}

var _ storage.BlobStore = (*InMemoryBlobStore)(nil)

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{
		blobs:       make(map[string][]byte),
		FailGetKeys: make(map[string]bool),
	}
}

func (s *InMemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGetKeys[key] {
		return nil, ierr.NewErrorf("blob %s is unreadable", key).
			Mark(ierr.ErrBlobNotFound)
	}
	content, ok := s.blobs[key]
	if !ok {
		return nil, ierr.NewErrorf("blob %s does not exist", key).
			Mark(ierr.ErrBlobNotFound)
	}
	return content, nil
}

func (s *InMemoryBlobStore) Put(_ context.Context, key string, content []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PutErr != nil {
		return s.PutErr
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	s.blobs[key] = stored
	return nil
}

func (s *InMemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}

// Seed stores content under key without going through Put.
func (s *InMemoryBlobStore) Seed(key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = content
}

// Keys returns all stored blob keys.
func (s *InMemoryBlobStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.blobs))
	for key := range s.blobs {
		keys = append(keys, key)
	}
	return keys
}
