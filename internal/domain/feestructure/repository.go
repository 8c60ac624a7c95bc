package feestructure

import "context"

// Filter narrows fee structure listings.
type Filter struct {
	Program    *string `form:"program"`
	Year       *string `form:"year"`
	ActiveOnly bool    `form:"active_only"`
}

// Repository defines the interface for fee structure persistence
type Repository interface {
	Create(ctx context.Context, structure *FeeStructure) error
	Get(ctx context.Context, id string) (*FeeStructure, error)
	Update(ctx context.Context, structure *FeeStructure) error
	// Archive soft-deactivates a structure still referenced by plans.
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *Filter) ([]*FeeStructure, error)
	Count(ctx context.Context, filter *Filter) (int, error)
}
