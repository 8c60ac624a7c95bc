package feestructure

import (
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// FeeCategory is one line of a fee structure. The amount is authoritative;
// the percentage of base is a display projection recomputed whenever the
// amount or the base total changes, never a second source of truth.
type FeeCategory struct {
	Name             string          `db:"name" json:"name"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	PercentageOfBase decimal.Decimal `db:"percentage_of_base" json:"percentage_of_base"`
}

// FeeStructure is a named template of fee category amounts for a cohort.
type FeeStructure struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	BaseAmount         decimal.Decimal `json:"base_amount"`
	Categories         []FeeCategory   `json:"categories"`
	ApplicablePrograms []string        `json:"applicable_programs,omitempty"`
	ApplicableYears    []string        `json:"applicable_years,omitempty"`

	types.BaseModel
}

// Validate validates the fee structure
func (f *FeeStructure) Validate() error {
	if f.Name == "" {
		return ierr.NewError("fee structure name is required").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if len(f.Categories) == 0 {
		return ierr.NewError("fee structure must have at least one category").
			WithHint("At least one fee category is required").
			Mark(ierr.ErrValidation)
	}

	seen := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if c.Name == "" {
			return ierr.NewError("fee category name is required").
				WithHint("Every fee category needs a name").
				Mark(ierr.ErrValidation)
		}
		if c.Amount.IsNegative() {
			return ierr.NewError("fee category amount cannot be negative").
				WithHint("Fee category amounts must be non-negative").
				WithReportableDetails(map[string]any{
					"category": c.Name,
					"amount":   c.Amount,
				}).
				Mark(ierr.ErrValidation)
		}
		if _, ok := seen[c.Name]; ok {
			return ierr.NewError("duplicate fee category").
				WithHintf("Category %s appears more than once", c.Name).
				Mark(ierr.ErrValidation)
		}
		seen[c.Name] = struct{}{}
	}

	return nil
}

// RecomputeBaseAmount sets the base amount to the sum of category amounts and
// refreshes the per-category percentage projections. A caller-supplied base
// amount is never trusted.
func (f *FeeStructure) RecomputeBaseAmount() {
	total := decimal.Zero
	for _, c := range f.Categories {
		total = total.Add(c.Amount)
	}
	f.BaseAmount = total

	for i := range f.Categories {
		if total.IsZero() {
			f.Categories[i].PercentageOfBase = decimal.Zero
			continue
		}
		f.Categories[i].PercentageOfBase = f.Categories[i].Amount.
			Mul(types.Hundred).
			Div(total).
			Round(2)
	}
}

// CategoryAmount returns the amount of the named category, or zero if the
// structure has no such line.
func (f *FeeStructure) CategoryAmount(name string) decimal.Decimal {
	for _, c := range f.Categories {
		if c.Name == name {
			return c.Amount
		}
	}
	return decimal.Zero
}

// IsActive reports whether the structure may be assigned to new plans.
func (f *FeeStructure) IsActive() bool {
	return f.Status == types.StatusPublished
}

// TableName returns the table name for the fee structure
func (f *FeeStructure) TableName() string {
	return "fee_structures"
}
