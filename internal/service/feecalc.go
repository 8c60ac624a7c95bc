package service

import (
	"context"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/student"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// FeeCalculationService computes fee breakdowns for students.
type FeeCalculationService interface {
	// ComputeForStudent resolves the student's profile through the directory
	// service and computes the breakdown over the given structure.
	ComputeForStudent(ctx context.Context, req *dto.ComputeFeeRequest) (*dto.FeeBreakdownResponse, error)
	// Preview computes a what-if breakdown over a caller-supplied profile
	// without touching the directory service.
	Preview(ctx context.Context, req *dto.PreviewFeeRequest) (*dto.FeeBreakdownResponse, error)
}

type feeCalculationService struct {
	ServiceParams
}

func NewFeeCalculationService(params ServiceParams) FeeCalculationService {
	return &feeCalculationService{
		ServiceParams: params,
	}
}

// ComputeFeeBreakdown maps a student profile, a fee structure, and the add-on
// catalog to a fee breakdown. Steps apply in a fixed order since later steps
// read the output of earlier ones: seed base fees, apply the tuition category
// multiplier, apply the scholarship discount to the adjusted tuition, then
// add hostel, transport, and one-time charges. Pure over its inputs: no I/O,
// no clock, safe to call repeatedly for previews.
func ComputeFeeBreakdown(profile *student.FeeProfile, structure *feestructure.FeeStructure, catalog *addon.Catalog) (*dto.FeeBreakdown, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	breakdown := &dto.FeeBreakdown{
		BaseFees: make(map[string]decimal.Decimal, len(structure.Categories)),
	}
	for _, c := range structure.Categories {
		breakdown.BaseFees[c.Name] = c.Amount
	}

	multiplier, err := profile.Category.TuitionMultiplier()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Student category has no tuition multiplier").
			WithReportableDetails(map[string]any{
				"category": profile.Category,
			}).
			Mark(ierr.ErrValidation)
	}
	tuition := types.RoundAmount(breakdown.BaseFees[types.FeeCategoryTuition].Mul(multiplier))
	if _, ok := breakdown.BaseFees[types.FeeCategoryTuition]; ok {
		breakdown.BaseFees[types.FeeCategoryTuition] = tuition
	}

	if profile.HasScholarship() {
		scholarshipAmount := types.PercentOf(tuition, profile.ScholarshipPercentage)
		if scholarshipAmount.IsPositive() {
			breakdown.Discounts = map[string]decimal.Decimal{
				types.DiscountScholarship: scholarshipAmount,
			}
		}
	}

	if profile.HostelRequired {
		tier, err := catalog.DefaultHostelTier()
		if err != nil {
			return nil, err
		}
		amount := tier.Amount
		breakdown.AdditionalFees.Hostel = &amount
	}
	if profile.TransportRequired {
		tier, err := catalog.DefaultTransportTier()
		if err != nil {
			return nil, err
		}
		amount := tier.Amount
		breakdown.AdditionalFees.Transport = &amount
	}
	if len(catalog.OneTimeCharges) > 0 {
		breakdown.AdditionalFees.OneTimeFees = make(map[string]decimal.Decimal, len(catalog.OneTimeCharges))
		for _, charge := range catalog.OneTimeCharges {
			breakdown.AdditionalFees.OneTimeFees[charge.Name] = charge.Amount
		}
	}

	breakdown.Total = breakdown.SumBase().
		Add(breakdown.SumAdditional()).
		Sub(breakdown.SumDiscounts())

	// Discounts are bounded by the tuition line they derive from, so a
	// negative total means corrupted upstream data, never a valid result.
	if breakdown.Total.IsNegative() {
		return nil, ierr.NewError("computed fee total is negative").
			WithHint("Fee computation produced a negative total").
			WithReportableDetails(map[string]any{
				"student_id":       profile.StudentID,
				"fee_structure_id": structure.ID,
				"total":            breakdown.Total,
			}).
			Mark(ierr.ErrInvariantViolation)
	}

	return breakdown, nil
}

func (s *feeCalculationService) ComputeForStudent(ctx context.Context, req *dto.ComputeFeeRequest) (*dto.FeeBreakdownResponse, error) {
	profile, err := s.Directory.GetStudentProfile(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, req.FeeStructureID, profile, req.StudentID)
}

func (s *feeCalculationService) Preview(ctx context.Context, req *dto.PreviewFeeRequest) (*dto.FeeBreakdownResponse, error) {
	resp, err := s.compute(ctx, req.FeeStructureID, &req.Profile, "")
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *feeCalculationService) compute(ctx context.Context, feeStructureID string, profile *student.FeeProfile, studentID string) (*dto.FeeBreakdownResponse, error) {
	structure, err := s.FeeStructureRepo.Get(ctx, feeStructureID)
	if err != nil {
		return nil, err
	}
	if !structure.IsActive() {
		return nil, ierr.NewError("fee structure is not active").
			WithHint("Fees can only be computed against an active fee structure").
			WithReportableDetails(map[string]any{
				"fee_structure_id": feeStructureID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	catalog, err := s.AddonRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := ComputeFeeBreakdown(profile, structure, catalog)
	if err != nil {
		if ierr.IsInvariantViolation(err) {
			s.Logger.Errorw("fee computation invariant violation",
				"student_id", profile.StudentID,
				"fee_structure_id", feeStructureID,
				"error", err)
		}
		return nil, err
	}

	return &dto.FeeBreakdownResponse{
		StudentID:      studentID,
		FeeStructureID: feeStructureID,
		Breakdown:      breakdown,
	}, nil
}
