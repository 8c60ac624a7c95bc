package cached

import (
	"context"

	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/logger"
)

// feeStructureRepository decorates the persistent repository with a
// read-through cache. Fee structures are read on every fee computation but
// change rarely, so single-entity reads are cached and every write wipes the
// prefix.
type feeStructureRepository struct {
	inner  feestructure.Repository
	cache  cache.Cache
	logger *logger.Logger
}

func NewFeeStructureRepository(inner feestructure.Repository, c cache.Cache, log *logger.Logger) feestructure.Repository {
	return &feeStructureRepository{
		inner:  inner,
		cache:  c,
		logger: log,
	}
}

func (r *feeStructureRepository) Create(ctx context.Context, structure *feestructure.FeeStructure) error {
	if err := r.inner.Create(ctx, structure); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixFeeStructure)
	return nil
}

func (r *feeStructureRepository) Get(ctx context.Context, id string) (*feestructure.FeeStructure, error) {
	key := cache.GenerateKey(cache.PrefixFeeStructure, id)
	if cached, found := r.cache.Get(ctx, key); found {
		if structure, ok := cached.(*feestructure.FeeStructure); ok {
			return structure, nil
		}
	}

	structure, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, structure, 0)
	return structure, nil
}

func (r *feeStructureRepository) Update(ctx context.Context, structure *feestructure.FeeStructure) error {
	if err := r.inner.Update(ctx, structure); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixFeeStructure)
	return nil
}

func (r *feeStructureRepository) Archive(ctx context.Context, id string) error {
	if err := r.inner.Archive(ctx, id); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixFeeStructure)
	return nil
}

func (r *feeStructureRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixFeeStructure)
	return nil
}

// List and Count stay uncached: filters make keys unbounded and listings are
// admin-path only.
func (r *feeStructureRepository) List(ctx context.Context, filter *feestructure.Filter) ([]*feestructure.FeeStructure, error) {
	return r.inner.List(ctx, filter)
}

func (r *feeStructureRepository) Count(ctx context.Context, filter *feestructure.Filter) (int, error) {
	return r.inner.Count(ctx, filter)
}
