package service

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/installment"
	"github.com/feeflow/feeflow/internal/domain/payment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// LedgerService records payments and owns the pending → completed/failed
// state machine. It is the only stateful component: installment statuses are
// derived from what it records, never set directly.
type LedgerService interface {
	// Record persists a new payment. Manual payments start pending; gateway
	// payments arrive pre-verified and are recorded completed immediately.
	Record(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	// Verify completes a pending payment and applies it to its installment.
	// Competing verifications of the same payment resolve to exactly one
	// winner through the version guard.
	Verify(ctx context.Context, id string, expectedVersion int) (*dto.PaymentResponse, error)
	// Reject fails a pending payment. No installment state changes.
	Reject(ctx context.Context, id string, expectedVersion int) (*dto.PaymentResponse, error)
	Get(ctx context.Context, id string) (*dto.PaymentResponse, error)
	List(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
	// GetCollectionStats aggregates collections against the plan's expected
	// totals as of the supplied date.
	GetCollectionStats(ctx context.Context, planID string, asOf time.Time) (*dto.CollectionStatsResponse, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{
		ServiceParams: params,
	}
}

func (s *ledgerService) Record(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	p := req.ToPayment(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var plan *installment.Plan
	if p.InstallmentID != "" {
		inst, err := s.PlanRepo.GetInstallment(ctx, p.InstallmentID)
		if err != nil {
			return nil, err
		}
		if p.PlanID == "" {
			p.PlanID = inst.PlanID
		} else if p.PlanID != inst.PlanID {
			return nil, ierr.NewError("installment does not belong to plan").
				WithHint("The installment belongs to a different plan").
				WithReportableDetails(map[string]any{
					"installment_id": p.InstallmentID,
					"plan_id":        p.PlanID,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	if p.PlanID != "" {
		var err error
		plan, err = s.PlanRepo.GetPlan(ctx, p.PlanID)
		if err != nil {
			return nil, err
		}
		if plan.PlanStatus == types.PlanStatusCancelled {
			return nil, ierr.NewError("plan is cancelled").
				WithHint("Payments cannot be recorded against a cancelled plan").
				WithReportableDetails(map[string]any{
					"plan_id": plan.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	// Gateway callbacks carry their own verification, so the payment enters
	// the ledger already completed.
	if p.Source == types.PaymentSourceGateway {
		verifier := req.GatewayIdentity
		if verifier == "" {
			verifier = "gateway"
		}
		if err := p.MarkCompleted(verifier, time.Now().UTC()); err != nil {
			return nil, err
		}
		p.ReceiptNumber = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT)
	}

	// The payment row and the installment credit commit together: a failed
	// application must not leave an orphaned completed payment behind.
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}
		if p.PaymentStatus == types.PaymentStatusCompleted && p.InstallmentID != "" {
			return s.applyToInstallment(ctx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", p.ID,
		"student_id", p.StudentID,
		"amount", p.Amount,
		"source", p.Source,
		"payment_status", p.PaymentStatus)

	return dto.NewPaymentResponse(p), nil
}

func (s *ledgerService) Verify(ctx context.Context, id string, expectedVersion int) (*dto.PaymentResponse, error) {
	// The state transition and the installment credit commit together: if the
	// credit cannot be applied the payment stays pending and the caller can
	// retry, instead of the credit being lost behind a terminal payment.
	var p *payment.Payment
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.transition(ctx, id, expectedVersion, func(p *payment.Payment, at time.Time) error {
			if err := p.MarkCompleted(types.GetUserID(ctx), at); err != nil {
				return err
			}
			p.ReceiptNumber = types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_RECEIPT)
			return nil
		})
		if err != nil {
			return err
		}
		if p.InstallmentID != "" {
			return s.applyToInstallment(ctx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("verified payment", "payment_id", p.ID, "receipt_number", p.ReceiptNumber)

	return dto.NewPaymentResponse(p), nil
}

func (s *ledgerService) Reject(ctx context.Context, id string, expectedVersion int) (*dto.PaymentResponse, error) {
	p, err := s.transition(ctx, id, expectedVersion, func(p *payment.Payment, at time.Time) error {
		return p.MarkFailed(types.GetUserID(ctx), at)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("rejected payment", "payment_id", p.ID)

	return dto.NewPaymentResponse(p), nil
}

// transition loads the payment, applies the guarded state change, and writes
// it back under the caller's expected version.
func (s *ledgerService) transition(ctx context.Context, id string, expectedVersion int, apply func(*payment.Payment, time.Time) error) (*payment.Payment, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p, time.Now().UTC()); err != nil {
		return nil, err
	}

	p.Version++
	p.UpdatedBy = types.GetUserID(ctx)
	if err := s.PaymentRepo.UpdateWithVersion(ctx, p, expectedVersion); err != nil {
		return nil, err
	}
	return p, nil
}

// applyToInstallment folds a completed payment into its installment's paid
// aggregates and completes the plan once every installment is paid. The
// credit is additive at the repository, so concurrent applications of
// different payments to the same installment never lose one.
func (s *ledgerService) applyToInstallment(ctx context.Context, p *payment.Payment) error {
	inst, err := s.PlanRepo.GetInstallment(ctx, p.InstallmentID)
	if err != nil {
		return err
	}

	paidDate := types.DateOnly(p.PaymentDate)
	if err := s.PlanRepo.ApplyPayment(ctx, inst.ID, p.Amount, paidDate, p.ReceiptNumber); err != nil {
		return err
	}

	// Re-read so the completion check sees the credit above.
	plan, err := s.PlanRepo.GetPlan(ctx, inst.PlanID)
	if err != nil {
		return err
	}

	if plan.PlanStatus == types.PlanStatusActive && plan.AllPaidAsOf(time.Now().UTC()) {
		expectedVersion := plan.Version
		plan.PlanStatus = types.PlanStatusCompleted
		plan.Version++
		plan.UpdatedBy = types.GetUserID(ctx)
		if err := s.PlanRepo.UpdatePlanWithVersion(ctx, plan, expectedVersion); err != nil {
			// A concurrent completion already moved the plan; the payment
			// itself is applied, so surface nothing.
			if ierr.IsVersionConflict(err) {
				return nil
			}
			return err
		}
		s.Logger.Infow("completed installment plan", "plan_id", plan.ID)
	}

	return nil
}

func (s *ledgerService) Get(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *ledgerService) List(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = &types.PaymentFilter{}
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = dto.NewPaymentResponse(p)
	}

	return &dto.ListPaymentsResponse{
		Items: items,
		Total: count,
	}, nil
}

func (s *ledgerService) GetCollectionStats(ctx context.Context, planID string, asOf time.Time) (*dto.CollectionStatsResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	plan, err := s.PlanRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	stats := &dto.CollectionStatsResponse{
		PlanID: plan.ID,
		AsOf:   asOf,
	}

	expected := decimal.Zero
	collected := decimal.Zero
	lateFees := decimal.Zero
	for _, inst := range plan.Installments {
		expected = expected.Add(inst.Amount)
		collected = collected.Add(inst.PaidAmount)
		lateFees = lateFees.Add(inst.LateFeeAsOf(asOf, plan.GracePeriodDays, plan.LateFeePercentage))

		switch inst.StatusAsOf(asOf, plan.GracePeriodDays, plan.LateFeePercentage) {
		case types.InstallmentStatusPaid:
			stats.PaidCount++
		case types.InstallmentStatusOverdue:
			stats.OverdueCount++
		default:
			stats.PendingCount++
		}
	}

	outstanding := expected.Add(lateFees).Sub(collected)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	stats.ExpectedTotal = expected
	stats.CollectedTotal = collected
	stats.LateFeesAccrued = lateFees
	stats.OutstandingTotal = outstanding

	payments, err := s.PaymentRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	for _, pay := range payments {
		switch pay.PaymentStatus {
		case types.PaymentStatusCompleted:
			stats.CompletedPayments++
		case types.PaymentStatusFailed:
			stats.FailedPayments++
		default:
			stats.PendingPayments++
		}
	}
	stats.TotalPayments = len(payments)
	stats.SuccessRate = decimal.Zero
	if stats.TotalPayments > 0 {
		stats.SuccessRate = types.RoundAmount(
			decimal.NewFromInt(int64(stats.CompletedPayments)).
				Div(decimal.NewFromInt(int64(stats.TotalPayments))).
				Mul(types.Hundred))
	}

	return stats, nil
}
