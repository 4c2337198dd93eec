package sanction

import (
	"context"
	"fmt"
	"sync"

	"loan-origination/internal/pkg/apperrors"
)

// Store persists rendered sanction letters by reference.
type Store interface {
	Put(ctx context.Context, ref, content string) error
	Get(ctx context.Context, ref string) (string, error)
}

type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]string)}
}

func (s *InMemoryStore) Put(ctx context.Context, ref, content string) error {
	if ref == "" {
		return apperrors.NewValidationError("ref", "document reference cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[ref] = content
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, ref string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.docs[ref]
	if !ok {
		return "", fmt.Errorf("%w: sanction document %s", apperrors.ErrNotFound, ref)
	}
	return content, nil
}
