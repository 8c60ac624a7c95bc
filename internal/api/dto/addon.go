package dto

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// TierRequest is one priced add-on option in an update request.
type TierRequest struct {
	Name      string          `json:"name" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	IsDefault bool            `json:"is_default"`
}

// ChargeRequest is one one-time charge in an update request.
type ChargeRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// UpdateAddonCatalogRequest replaces the institution's add-on catalog as a
// whole. Tier and charge lists are not patched individually.
type UpdateAddonCatalogRequest struct {
	HostelTiers    []TierRequest   `json:"hostel_tiers,omitempty"`
	TransportTiers []TierRequest   `json:"transport_tiers,omitempty"`
	OneTimeCharges []ChargeRequest `json:"one_time_charges,omitempty"`
}

// AddonCatalogResponse represents the add-on catalog
type AddonCatalogResponse struct {
	ID             string          `json:"id"`
	HostelTiers    []addon.Tier    `json:"hostel_tiers"`
	TransportTiers []addon.Tier    `json:"transport_tiers"`
	OneTimeCharges []addon.Charge  `json:"one_time_charges"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCatalog converts an update request to a domain catalog.
func (r *UpdateAddonCatalogRequest) ToCatalog(ctx context.Context) *addon.Catalog {
	hostel := make([]addon.Tier, len(r.HostelTiers))
	for i, t := range r.HostelTiers {
		hostel[i] = addon.Tier{Name: t.Name, Amount: t.Amount, IsDefault: t.IsDefault}
	}
	transport := make([]addon.Tier, len(r.TransportTiers))
	for i, t := range r.TransportTiers {
		transport[i] = addon.Tier{Name: t.Name, Amount: t.Amount, IsDefault: t.IsDefault}
	}
	charges := make([]addon.Charge, len(r.OneTimeCharges))
	for i, c := range r.OneTimeCharges {
		charges[i] = addon.Charge{Name: c.Name, Amount: c.Amount}
	}

	return &addon.Catalog{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ADDON_CATALOG),
		HostelTiers:    hostel,
		TransportTiers: transport,
		OneTimeCharges: charges,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

// NewAddonCatalogResponse creates a response from a domain catalog.
func NewAddonCatalogResponse(c *addon.Catalog) *AddonCatalogResponse {
	return &AddonCatalogResponse{
		ID:             c.ID,
		HostelTiers:    c.HostelTiers,
		TransportTiers: c.TransportTiers,
		OneTimeCharges: c.OneTimeCharges,
		UpdatedAt:      c.UpdatedAt,
	}
}
