package testutil

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/feestructure"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/samber/lo"
)

// InMemoryFeeStructureStore implements feestructure.Repository
type InMemoryFeeStructureStore struct {
	*InMemoryStore[*feestructure.FeeStructure]
}

func NewInMemoryFeeStructureStore() *InMemoryFeeStructureStore {
	return &InMemoryFeeStructureStore{
		InMemoryStore: NewInMemoryStore[*feestructure.FeeStructure](),
	}
}

func feeStructureFilterFn(_ context.Context, f *feestructure.FeeStructure, filter interface{}) bool {
	if f.Status == types.StatusDeleted {
		return false
	}

	fil, ok := filter.(*feestructure.Filter)
	if !ok || fil == nil {
		return true
	}
	if fil.ActiveOnly && f.Status != types.StatusPublished {
		return false
	}
	if fil.Program != nil && !lo.Contains(f.ApplicablePrograms, *fil.Program) {
		return false
	}
	if fil.Year != nil && !lo.Contains(f.ApplicableYears, *fil.Year) {
		return false
	}
	return true
}

func feeStructureSortFn(i, j *feestructure.FeeStructure) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryFeeStructureStore) Create(ctx context.Context, structure *feestructure.FeeStructure) error {
	if err := s.InMemoryStore.Create(ctx, structure.ID, structure); err != nil {
		return ierr.WithError(err).
			WithHint("A fee structure with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryFeeStructureStore) Get(ctx context.Context, id string) (*feestructure.FeeStructure, error) {
	structure, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || structure.Status == types.StatusDeleted {
		return nil, ierr.NewError("fee structure not found").
			WithHintf("Fee structure %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return structure, nil
}

func (s *InMemoryFeeStructureStore) Update(ctx context.Context, structure *feestructure.FeeStructure) error {
	structure.UpdatedAt = time.Now().UTC()
	if err := s.InMemoryStore.Update(ctx, structure.ID, structure); err != nil {
		return ierr.NewError("fee structure not found").
			WithHintf("Fee structure %s does not exist", structure.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryFeeStructureStore) Archive(ctx context.Context, id string) error {
	structure, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	structure.Status = types.StatusArchived
	structure.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, structure)
}

func (s *InMemoryFeeStructureStore) Delete(ctx context.Context, id string) error {
	structure, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	structure.Status = types.StatusDeleted
	structure.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, structure)
}

func (s *InMemoryFeeStructureStore) List(ctx context.Context, filter *feestructure.Filter) ([]*feestructure.FeeStructure, error) {
	return s.InMemoryStore.List(ctx, filter, feeStructureFilterFn, feeStructureSortFn)
}

func (s *InMemoryFeeStructureStore) Count(ctx context.Context, filter *feestructure.Filter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, feeStructureFilterFn)
}
