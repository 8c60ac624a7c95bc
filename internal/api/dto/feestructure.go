package dto

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// CreateFeeStructureRequest represents a request to create a fee structure.
// The base amount is always recomputed from the categories, never accepted
// from the caller.
type CreateFeeStructureRequest struct {
	Name               string               `json:"name" binding:"required"`
	Description        string               `json:"description,omitempty"`
	Categories         []FeeCategoryRequest `json:"categories" binding:"required,dive"`
	ApplicablePrograms []string             `json:"applicable_programs,omitempty"`
	ApplicableYears    []string             `json:"applicable_years,omitempty"`
}

// FeeCategoryRequest is one fee line of a create/update request.
type FeeCategoryRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// UpdateFeeStructureRequest represents a partial update of a fee structure.
type UpdateFeeStructureRequest struct {
	Name               *string              `json:"name,omitempty"`
	Description        *string              `json:"description,omitempty"`
	Categories         []FeeCategoryRequest `json:"categories,omitempty"`
	ApplicablePrograms []string             `json:"applicable_programs,omitempty"`
	ApplicableYears    []string             `json:"applicable_years,omitempty"`
}

// FeeStructureResponse represents a fee structure response
type FeeStructureResponse struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	Description        string                     `json:"description,omitempty"`
	BaseAmount         decimal.Decimal            `json:"base_amount"`
	Categories         []feestructure.FeeCategory `json:"categories"`
	ApplicablePrograms []string                   `json:"applicable_programs,omitempty"`
	ApplicableYears    []string                   `json:"applicable_years,omitempty"`
	Active             bool                       `json:"active"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

// ListFeeStructuresResponse represents a list of fee structures
type ListFeeStructuresResponse struct {
	Items []*FeeStructureResponse `json:"items"`
	Total int                     `json:"total"`
}

// ToFeeStructure converts a create request to a domain fee structure.
func (r *CreateFeeStructureRequest) ToFeeStructure(ctx context.Context) *feestructure.FeeStructure {
	categories := make([]feestructure.FeeCategory, len(r.Categories))
	for i, c := range r.Categories {
		categories[i] = feestructure.FeeCategory{
			Name:   c.Name,
			Amount: c.Amount,
		}
	}

	fs := &feestructure.FeeStructure{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE_STRUCTURE),
		Name:               r.Name,
		Description:        r.Description,
		Categories:         categories,
		ApplicablePrograms: r.ApplicablePrograms,
		ApplicableYears:    r.ApplicableYears,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	fs.RecomputeBaseAmount()
	return fs
}

// NewFeeStructureResponse creates a response from a domain fee structure.
func NewFeeStructureResponse(fs *feestructure.FeeStructure) *FeeStructureResponse {
	return &FeeStructureResponse{
		ID:                 fs.ID,
		Name:               fs.Name,
		Description:        fs.Description,
		BaseAmount:         fs.BaseAmount,
		Categories:         fs.Categories,
		ApplicablePrograms: fs.ApplicablePrograms,
		ApplicableYears:    fs.ApplicableYears,
		Active:             fs.IsActive(),
		CreatedAt:          fs.CreatedAt,
		UpdatedAt:          fs.UpdatedAt,
	}
}
