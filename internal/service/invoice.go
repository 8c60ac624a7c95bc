package service

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/shopspring/decimal"
)

// InvoiceService assembles display-ready invoices. The invoice is a pure
// projection over the breakdown, the plan, and the payment history; nothing
// here is persisted.
type InvoiceService interface {
	Generate(ctx context.Context, planID string, asOf time.Time) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) Generate(ctx context.Context, planID string, asOf time.Time) (*dto.InvoiceResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	plan, err := s.PlanRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	profile, err := s.Directory.GetStudentProfile(ctx, plan.StudentID)
	if err != nil {
		return nil, err
	}
	structure, err := s.FeeStructureRepo.Get(ctx, plan.FeeStructureID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.AddonRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := ComputeFeeBreakdown(profile, structure, catalog)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	paymentItems := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		paymentItems[i] = dto.NewPaymentResponse(p)
	}

	totalPayable := decimal.Zero
	totalPaid := decimal.Zero
	totalLateFees := decimal.Zero
	for _, inst := range plan.Installments {
		totalPayable = totalPayable.Add(inst.Amount)
		totalPaid = totalPaid.Add(inst.PaidAmount)
		totalLateFees = totalLateFees.Add(inst.LateFeeAsOf(asOf, plan.GracePeriodDays, plan.LateFeePercentage))
	}
	totalPayable = totalPayable.Add(totalLateFees)

	balanceDue := totalPayable.Sub(totalPaid)
	if balanceDue.IsNegative() {
		balanceDue = decimal.Zero
	}

	return &dto.InvoiceResponse{
		StudentID:      plan.StudentID,
		FeeStructureID: plan.FeeStructureID,
		PlanID:         plan.ID,
		GeneratedAt:    asOf,
		Breakdown:      breakdown,
		Plan:           dto.NewPlanResponse(plan, asOf),
		Payments:       paymentItems,
		TotalPayable:   totalPayable,
		TotalPaid:      totalPaid,
		TotalLateFees:  totalLateFees,
		BalanceDue:     balanceDue,
	}, nil
}
