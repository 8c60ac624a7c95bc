package service

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/installment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// PlanService manages installment plans.
type PlanService interface {
	// Create generates the schedule and persists the plan with its
	// installments. When the request omits the total amount it is computed
	// from the student's fee breakdown over the referenced structure.
	Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	Get(ctx context.Context, id string, asOf time.Time) (*dto.PlanResponse, error)
	List(ctx context.Context, filter *installment.PlanFilter, asOf time.Time) (*dto.ListPlansResponse, error)
	// Cancel transitions an active plan to its terminal cancelled state.
	Cancel(ctx context.Context, id string) (*dto.PlanResponse, error)
	// PreviewSchedule generates a schedule without persisting anything.
	PreviewSchedule(ctx context.Context, req *dto.PreviewScheduleRequest) (*dto.ScheduleResponse, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	structure, err := s.FeeStructureRepo.Get(ctx, req.FeeStructureID)
	if err != nil {
		return nil, err
	}
	if !structure.IsActive() {
		return nil, ierr.NewError("fee structure is not active").
			WithHint("Plans can only be created against an active fee structure").
			WithReportableDetails(map[string]any{
				"fee_structure_id": req.FeeStructureID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	totalAmount, err := s.resolveTotalAmount(ctx, req, structure)
	if err != nil {
		return nil, err
	}

	plan := req.ToPlan(ctx, totalAmount)
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	schedule, err := installment.GenerateSchedule(plan.TotalAmount, installment.ScheduleParams{
		NumberOfInstallments: plan.NumberOfInstallments,
		DiscountPercent:      plan.DiscountPercent,
		DueDateType:          plan.DueDateType,
		StartDate:            plan.StartDate,
	})
	if err != nil {
		return nil, err
	}

	plan.Installments = make([]*installment.Installment, len(schedule))
	for i, item := range schedule {
		plan.Installments[i] = &installment.Installment{
			ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INSTALLMENT),
			PlanID:            plan.ID,
			InstallmentNumber: item.InstallmentNumber,
			DueDate:           item.DueDate,
			Amount:            item.Amount,
			PaidAmount:        decimal.Zero,
			BaseModel:         types.GetDefaultBaseModel(ctx),
		}
	}

	if err := s.PlanRepo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.Logger.Infow("created installment plan",
		"plan_id", plan.ID,
		"student_id", plan.StudentID,
		"total_amount", plan.TotalAmount,
		"installments", plan.NumberOfInstallments)

	return dto.NewPlanResponse(plan, time.Now().UTC()), nil
}

// resolveTotalAmount uses the caller-supplied total when present, otherwise
// computes it from the student's fee breakdown.
func (s *planService) resolveTotalAmount(ctx context.Context, req *dto.CreatePlanRequest, structure *feestructure.FeeStructure) (decimal.Decimal, error) {
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return decimal.Zero, ierr.NewError("total amount cannot be negative").
				WithHint("Total amount must be non-negative").
				Mark(ierr.ErrValidation)
		}
		return *req.TotalAmount, nil
	}

	profile, err := s.Directory.GetStudentProfile(ctx, req.StudentID)
	if err != nil {
		return decimal.Zero, err
	}
	catalog, err := s.AddonRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	breakdown, err := ComputeFeeBreakdown(profile, structure, catalog)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.Total, nil
}

func (s *planService) Get(ctx context.Context, id string, asOf time.Time) (*dto.PlanResponse, error) {
	plan, err := s.PlanRepo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return dto.NewPlanResponse(plan, asOf), nil
}

func (s *planService) List(ctx context.Context, filter *installment.PlanFilter, asOf time.Time) (*dto.ListPlansResponse, error) {
	if filter == nil {
		filter = &installment.PlanFilter{}
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	plans, err := s.PlanRepo.ListPlans(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PlanResponse, len(plans))
	for i, plan := range plans {
		items[i] = dto.NewPlanResponse(plan, asOf)
	}

	return &dto.ListPlansResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *planService) Cancel(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := s.PlanRepo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.PlanStatus != types.PlanStatusActive {
		return nil, ierr.NewError("plan is not active").
			WithHintf("Plan is already %s", plan.PlanStatus).
			WithReportableDetails(map[string]any{
				"plan_id":     plan.ID,
				"plan_status": plan.PlanStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	expectedVersion := plan.Version
	plan.PlanStatus = types.PlanStatusCancelled
	plan.Version++
	plan.UpdatedBy = types.GetUserID(ctx)

	if err := s.PlanRepo.UpdatePlanWithVersion(ctx, plan, expectedVersion); err != nil {
		return nil, err
	}

	s.Logger.Infow("cancelled installment plan", "plan_id", plan.ID)

	return dto.NewPlanResponse(plan, time.Now().UTC()), nil
}

func (s *planService) PreviewSchedule(ctx context.Context, req *dto.PreviewScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := installment.GenerateSchedule(req.TotalAmount, req.ToScheduleParams())
	if err != nil {
		return nil, err
	}

	discountedTotal := decimal.Zero
	for _, item := range schedule {
		discountedTotal = discountedTotal.Add(item.Amount)
	}

	return &dto.ScheduleResponse{
		Installments:    schedule,
		DiscountedTotal: discountedTotal,
	}, nil
}
