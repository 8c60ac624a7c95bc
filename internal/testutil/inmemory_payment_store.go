package testutil

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/payment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func paymentFilterFn(_ context.Context, p *payment.Payment, filter interface{}) bool {
	fil, ok := filter.(*types.PaymentFilter)
	if !ok || fil == nil {
		return true
	}
	if fil.StudentID != nil && p.StudentID != *fil.StudentID {
		return false
	}
	if fil.PlanID != nil && p.PlanID != *fil.PlanID {
		return false
	}
	if fil.InstallmentID != nil && p.InstallmentID != *fil.InstallmentID {
		return false
	}
	if fil.PaymentStatus != nil && string(p.PaymentStatus) != *fil.PaymentStatus {
		return false
	}
	if fil.PaymentMethod != nil && string(p.PaymentMethod) != *fil.PaymentMethod {
		return false
	}
	if fil.StartTime != nil && p.PaymentDate.Before(*fil.StartTime) {
		return false
	}
	if fil.EndTime != nil && p.PaymentDate.After(*fil.EndTime) {
		return false
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	return i.PaymentDate.After(j.PaymentDate)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p.TransactionID != "" {
		existing, _ := s.InMemoryStore.List(ctx, nil, nil, nil)
		for _, other := range existing {
			if other.TransactionID == p.TransactionID {
				return ierr.NewError("payment already exists").
					WithHint("A payment with this transaction ID already exists").
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}
	if err := s.InMemoryStore.Create(ctx, p.ID, p.Clone()); err != nil {
		return ierr.WithError(err).
			WithHint("A payment with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

// Get returns a detached copy, matching the row-scan semantics of the
// persistent repository: mutations on the result do not leak into the store
// until an update persists them.
func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("payment not found").
			WithHintf("Payment %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *InMemoryPaymentStore) UpdateWithVersion(ctx context.Context, p *payment.Payment, expectedVersion int) error {
	stored, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if stored.Version != expectedVersion {
		return ierr.NewError("payment version conflict").
			WithHint("The payment was modified concurrently, retry with the latest version").
			WithReportableDetails(map[string]any{
				"payment_id":       p.ID,
				"expected_version": expectedVersion,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	p.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, p.ID, p.Clone())
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	stored, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*payment.Payment, len(stored))
	for i, p := range stored {
		result[i] = p.Clone()
	}
	return result, nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}

func (s *InMemoryPaymentStore) snapshot() map[string]*payment.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]*payment.Payment, len(s.items))
	for id, p := range s.items {
		snap[id] = p.Clone()
	}
	return snap
}

func (s *InMemoryPaymentStore) restore(snap map[string]*payment.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap
}

func (s *InMemoryPaymentStore) ListByInstallment(ctx context.Context, installmentID string) ([]*payment.Payment, error) {
	return s.List(ctx, &types.PaymentFilter{InstallmentID: &installmentID})
}

func (s *InMemoryPaymentStore) ListByPlan(ctx context.Context, planID string) ([]*payment.Payment, error) {
	return s.List(ctx, &types.PaymentFilter{PlanID: &planID})
}
