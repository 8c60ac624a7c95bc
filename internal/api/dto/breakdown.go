package dto

import (
	"github.com/feeflow/feeflow/internal/domain/student"
	"github.com/shopspring/decimal"
)

// FeeBreakdown is the display-ready result of a fee computation. Field names
// and nesting (additional_fees.one_time_fees.*) are part of the contract
// consumed by invoice rendering.
type FeeBreakdown struct {
	BaseFees       map[string]decimal.Decimal `json:"base_fees"`
	AdditionalFees AdditionalFees             `json:"additional_fees"`
	Discounts      map[string]decimal.Decimal `json:"discounts,omitempty"`
	Total          decimal.Decimal            `json:"total"`
}

// AdditionalFees groups optional add-on charges. Absent add-ons produce no
// entry at all, not a zero entry.
type AdditionalFees struct {
	Hostel      *decimal.Decimal           `json:"hostel,omitempty"`
	Transport   *decimal.Decimal           `json:"transport,omitempty"`
	OneTimeFees map[string]decimal.Decimal `json:"one_time_fees,omitempty"`
}

// SumBase returns the sum of all base fee lines.
func (b *FeeBreakdown) SumBase() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range b.BaseFees {
		total = total.Add(amount)
	}
	return total
}

// SumAdditional returns the flattened sum of all additional fee entries.
func (b *FeeBreakdown) SumAdditional() decimal.Decimal {
	total := decimal.Zero
	if b.AdditionalFees.Hostel != nil {
		total = total.Add(*b.AdditionalFees.Hostel)
	}
	if b.AdditionalFees.Transport != nil {
		total = total.Add(*b.AdditionalFees.Transport)
	}
	for _, amount := range b.AdditionalFees.OneTimeFees {
		total = total.Add(amount)
	}
	return total
}

// SumDiscounts returns the sum of all discount entries.
func (b *FeeBreakdown) SumDiscounts() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range b.Discounts {
		total = total.Add(amount)
	}
	return total
}

// ComputeFeeRequest asks for a student's breakdown, resolving the profile
// through the directory service.
type ComputeFeeRequest struct {
	StudentID      string `json:"student_id" binding:"required"`
	FeeStructureID string `json:"fee_structure_id" binding:"required"`
}

// PreviewFeeRequest asks for a what-if breakdown over a caller-supplied
// profile without touching the directory service.
type PreviewFeeRequest struct {
	FeeStructureID string             `json:"fee_structure_id" binding:"required"`
	Profile        student.FeeProfile `json:"profile" binding:"required"`
}

// FeeBreakdownResponse wraps a computed breakdown with its inputs' identity.
type FeeBreakdownResponse struct {
	StudentID      string        `json:"student_id,omitempty"`
	FeeStructureID string        `json:"fee_structure_id"`
	Breakdown      *FeeBreakdown `json:"breakdown"`
}
