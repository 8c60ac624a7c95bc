package service

import (
	"context"

	"github.com/feeflow/feeflow/internal/api/dto"
)

// AddonCatalogService manages the institution's add-on catalog.
type AddonCatalogService interface {
	Get(ctx context.Context) (*dto.AddonCatalogResponse, error)
	// Update replaces the catalog wholesale. Already-generated breakdowns and
	// plans are unaffected; only future computations read the new prices.
	Update(ctx context.Context, req *dto.UpdateAddonCatalogRequest) (*dto.AddonCatalogResponse, error)
}

type addonCatalogService struct {
	ServiceParams
}

func NewAddonCatalogService(params ServiceParams) AddonCatalogService {
	return &addonCatalogService{
		ServiceParams: params,
	}
}

func (s *addonCatalogService) Get(ctx context.Context) (*dto.AddonCatalogResponse, error) {
	catalog, err := s.AddonRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewAddonCatalogResponse(catalog), nil
}

func (s *addonCatalogService) Update(ctx context.Context, req *dto.UpdateAddonCatalogRequest) (*dto.AddonCatalogResponse, error) {
	catalog := req.ToCatalog(ctx)
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	if err := s.AddonRepo.Update(ctx, catalog); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated addon catalog",
		"catalog_id", catalog.ID,
		"hostel_tiers", len(catalog.HostelTiers),
		"transport_tiers", len(catalog.TransportTiers),
		"one_time_charges", len(catalog.OneTimeCharges))

	return dto.NewAddonCatalogResponse(catalog), nil
}
