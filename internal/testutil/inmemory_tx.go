package testutil

import "context"

// InMemoryTxManager gives the in-memory stores the same all-or-nothing write
// semantics the postgres transaction helper provides: the callback runs
// against the live stores, and a failed run restores the payment and plan
// state captured on entry.
type InMemoryTxManager struct {
	plans    *InMemoryInstallmentStore
	payments *InMemoryPaymentStore
}

func NewInMemoryTxManager(plans *InMemoryInstallmentStore, payments *InMemoryPaymentStore) *InMemoryTxManager {
	return &InMemoryTxManager{
		plans:    plans,
		payments: payments,
	}
}

func (m *InMemoryTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	planSnap := m.plans.snapshot()
	paymentSnap := m.payments.snapshot()

	if err := fn(ctx); err != nil {
		m.plans.restore(planSnap)
		m.payments.restore(paymentSnap)
		return err
	}
	return nil
}
