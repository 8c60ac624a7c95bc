package cached

import (
	"context"

	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/logger"
)

const addonCatalogKey = cache.PrefixAddonCatalog + "current"

// addonRepository caches the single active catalog, which sits on the hot
// path of every fee computation.
type addonRepository struct {
	inner  addon.Repository
	cache  cache.Cache
	logger *logger.Logger
}

func NewAddonRepository(inner addon.Repository, c cache.Cache, log *logger.Logger) addon.Repository {
	return &addonRepository{
		inner:  inner,
		cache:  c,
		logger: log,
	}
}

func (r *addonRepository) Get(ctx context.Context) (*addon.Catalog, error) {
	if cached, found := r.cache.Get(ctx, addonCatalogKey); found {
		if catalog, ok := cached.(*addon.Catalog); ok {
			return catalog, nil
		}
	}

	catalog, err := r.inner.Get(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, addonCatalogKey, catalog, 0)
	return catalog, nil
}

func (r *addonRepository) Update(ctx context.Context, catalog *addon.Catalog) error {
	if err := r.inner.Update(ctx, catalog); err != nil {
		return err
	}
	r.cache.Delete(ctx, addonCatalogKey)
	return nil
}
