package payment

import (
	"context"

	"github.com/feeflow/feeflow/internal/types"
)

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// UpdateWithVersion applies an optimistic update guarded by the expected
	// version; a stale version yields a version conflict error. This is the
	// serialization primitive for competing verify/reject calls.
	UpdateWithVersion(ctx context.Context, payment *Payment, expectedVersion int) error
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
	ListByInstallment(ctx context.Context, installmentID string) ([]*Payment, error)
	ListByPlan(ctx context.Context, planID string) ([]*Payment, error)
}
