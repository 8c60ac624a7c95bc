package testutil

import (
	"context"
	"sync"

	"github.com/feeflow/feeflow/internal/domain/addon"
	ierr "github.com/feeflow/feeflow/internal/errors"
)

// InMemoryAddonStore implements addon.Repository holding a single catalog.
type InMemoryAddonStore struct {
	mu      sync.RWMutex
	catalog *addon.Catalog
}

func NewInMemoryAddonStore() *InMemoryAddonStore {
	return &InMemoryAddonStore{}
}

func (s *InMemoryAddonStore) Get(_ context.Context) (*addon.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ierr.NewError("addon catalog not configured").
			WithHint("No add-on catalog has been configured").
			Mark(ierr.ErrNotFound)
	}
	return s.catalog, nil
}

func (s *InMemoryAddonStore) Update(_ context.Context, catalog *addon.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	return nil
}

func (s *InMemoryAddonStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = nil
}
