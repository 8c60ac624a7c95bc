package installment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PlanFilter narrows plan listings.
type PlanFilter struct {
	StudentID      *string `form:"student_id"`
	FeeStructureID *string `form:"fee_structure_id"`
	PlanStatus     *string `form:"plan_status"`
}

// Repository defines the interface for installment plan persistence
type Repository interface {
	// CreatePlan persists the plan and its installments atomically.
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context, filter *PlanFilter) ([]*Plan, error)
	// UpdatePlanWithVersion applies an optimistic update guarded by the
	// expected version; a stale version yields a version conflict error.
	UpdatePlanWithVersion(ctx context.Context, plan *Plan, expectedVersion int) error
	GetInstallment(ctx context.Context, id string) (*Installment, error)
	// ApplyPayment credits a completed payment against an installment. The
	// write is additive at the storage layer so concurrent applications of
	// different payments to the same installment both land.
	ApplyPayment(ctx context.Context, installmentID string, amount decimal.Decimal, paidDate time.Time, receiptNumber string) error
	// CountByFeeStructure reports how many plans reference a fee structure,
	// used to decide soft-deactivation versus physical delete.
	CountByFeeStructure(ctx context.Context, feeStructureID string) (int, error)
}
