package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/feeflow/feeflow/internal/domain/installment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryInstallmentStore implements installment.Repository. Plans and their
// installments are held together, mirroring the transactional write of the
// persistent repository. Reads return detached copies, matching row-scan
// semantics: callers never hold aliases into the stored state.
type InMemoryInstallmentStore struct {
	mu    sync.RWMutex
	plans map[string]*installment.Plan
}

func NewInMemoryInstallmentStore() *InMemoryInstallmentStore {
	return &InMemoryInstallmentStore{
		plans: make(map[string]*installment.Plan),
	}
}

func (s *InMemoryInstallmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*installment.Plan)
}

// RemovePlan drops a plan outright, bypassing soft-delete semantics. Test
// hook for simulating missing rows mid-operation.
func (s *InMemoryInstallmentStore) RemovePlan(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
}

func (s *InMemoryInstallmentStore) CreatePlan(_ context.Context, plan *installment.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.ID]; exists {
		return ierr.NewError("plan already exists").
			WithHint("A plan with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.plans[plan.ID] = plan.Clone()
	return nil
}

func (s *InMemoryInstallmentStore) GetPlan(_ context.Context, id string) (*installment.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok || plan.Status == types.StatusDeleted {
		return nil, ierr.NewError("plan not found").
			WithHintf("Installment plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return plan.Clone(), nil
}

func (s *InMemoryInstallmentStore) ListPlans(_ context.Context, filter *installment.PlanFilter) ([]*installment.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*installment.Plan
	for _, plan := range s.plans {
		if plan.Status == types.StatusDeleted {
			continue
		}
		if filter != nil {
			if filter.StudentID != nil && plan.StudentID != *filter.StudentID {
				continue
			}
			if filter.FeeStructureID != nil && plan.FeeStructureID != *filter.FeeStructureID {
				continue
			}
			if filter.PlanStatus != nil && string(plan.PlanStatus) != *filter.PlanStatus {
				continue
			}
		}
		result = append(result, plan.Clone())
	}
	return result, nil
}

// UpdatePlanWithVersion applies the same column set as the persistent
// repository: plan status, version, and audit fields. Installments are never
// touched through this path.
func (s *InMemoryInstallmentStore) UpdatePlanWithVersion(_ context.Context, plan *installment.Plan, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.plans[plan.ID]
	if !ok || stored.Status == types.StatusDeleted {
		return ierr.NewError("plan not found").
			WithHintf("Installment plan %s does not exist", plan.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != expectedVersion {
		return ierr.NewError("plan version conflict").
			WithHint("The plan was modified concurrently, retry with the latest version").
			WithReportableDetails(map[string]any{
				"plan_id":          plan.ID,
				"expected_version": expectedVersion,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	stored.PlanStatus = plan.PlanStatus
	stored.Version = plan.Version
	stored.UpdatedAt = time.Now().UTC()
	stored.UpdatedBy = plan.UpdatedBy
	return nil
}

func (s *InMemoryInstallmentStore) GetInstallment(_ context.Context, id string) (*installment.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, plan := range s.plans {
		for _, inst := range plan.Installments {
			if inst.ID == id {
				return inst.Clone(), nil
			}
		}
	}
	return nil, ierr.NewError("installment not found").
		WithHintf("Installment %s does not exist", id).
		Mark(ierr.ErrNotFound)
}

// ApplyPayment folds a completed payment into the installment's paid
// aggregates additively under the store lock, so concurrent applications of
// different payments never lose a credit.
func (s *InMemoryInstallmentStore) ApplyPayment(ctx context.Context, installmentID string, amount decimal.Decimal, paidDate time.Time, receiptNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, plan := range s.plans {
		for _, inst := range plan.Installments {
			if inst.ID != installmentID {
				continue
			}
			inst.PaidAmount = inst.PaidAmount.Add(amount)
			if inst.PaidDate == nil || paidDate.After(*inst.PaidDate) {
				d := paidDate
				inst.PaidDate = &d
			}
			if receiptNumber != "" {
				inst.ReceiptNumber = receiptNumber
			}
			inst.UpdatedAt = time.Now().UTC()
			inst.UpdatedBy = types.GetUserID(ctx)
			return nil
		}
	}
	return ierr.NewError("installment not found").
		WithHintf("Installment %s does not exist", installmentID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryInstallmentStore) CountByFeeStructure(_ context.Context, feeStructureID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, plan := range s.plans {
		if plan.Status != types.StatusDeleted && plan.FeeStructureID == feeStructureID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryInstallmentStore) snapshot() map[string]*installment.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]*installment.Plan, len(s.plans))
	for id, plan := range s.plans {
		snap[id] = plan.Clone()
	}
	return snap
}

func (s *InMemoryInstallmentStore) restore(snap map[string]*installment.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = snap
}
