package dto

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/installment"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest represents a request to create an installment plan. When
// TotalAmount is omitted the service computes it from the student's fee
// breakdown over the referenced structure.
type CreatePlanRequest struct {
	StudentID            string            `json:"student_id" binding:"required"`
	FeeStructureID       string            `json:"fee_structure_id" binding:"required"`
	TotalAmount          *decimal.Decimal  `json:"total_amount,omitempty"`
	NumberOfInstallments int               `json:"number_of_installments" binding:"required"`
	DiscountPercent      decimal.Decimal   `json:"discount_percent"`
	DueDateType          types.DueDateType `json:"due_date_type" binding:"required"`
	StartDate            time.Time         `json:"start_date" binding:"required"`
	LateFeePercentage    decimal.Decimal   `json:"late_fee_percentage"`
	GracePeriodDays      int               `json:"grace_period_days"`
}

// PreviewScheduleRequest asks for a schedule preview without persisting
// anything. Deterministic: identical requests produce identical schedules.
type PreviewScheduleRequest struct {
	TotalAmount          decimal.Decimal   `json:"total_amount" binding:"required"`
	NumberOfInstallments int               `json:"number_of_installments" binding:"required"`
	DiscountPercent      decimal.Decimal   `json:"discount_percent"`
	DueDateType          types.DueDateType `json:"due_date_type" binding:"required"`
	StartDate            time.Time         `json:"start_date" binding:"required"`
}

// ScheduleResponse is a generated schedule preview.
type ScheduleResponse struct {
	Installments    []installment.ScheduledInstallment `json:"installments"`
	DiscountedTotal decimal.Decimal                    `json:"discounted_total"`
}

// InstallmentResponse is an installment with its status derived against the
// as-of date of the enclosing response.
type InstallmentResponse struct {
	ID                string                  `json:"id"`
	InstallmentNumber int                     `json:"installment_number"`
	DueDate           time.Time               `json:"due_date"`
	Amount            decimal.Decimal         `json:"amount"`
	Status            types.InstallmentStatus `json:"status"`
	LateFee           decimal.Decimal         `json:"late_fee"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	PaidDate          *time.Time              `json:"paid_date,omitempty"`
	ReceiptNumber     string                  `json:"receipt_number,omitempty"`
}

// PlanResponse represents an installment plan response
type PlanResponse struct {
	ID                   string                 `json:"id"`
	StudentID            string                 `json:"student_id"`
	FeeStructureID       string                 `json:"fee_structure_id"`
	TotalAmount          decimal.Decimal        `json:"total_amount"`
	DiscountPercent      decimal.Decimal        `json:"discount_percent"`
	NumberOfInstallments int                    `json:"number_of_installments"`
	StartDate            time.Time              `json:"start_date"`
	DueDateType          types.DueDateType      `json:"due_date_type"`
	LateFeePercentage    decimal.Decimal        `json:"late_fee_percentage"`
	GracePeriodDays      int                    `json:"grace_period_days"`
	PlanStatus           types.PlanStatus       `json:"plan_status"`
	Installments         []*InstallmentResponse `json:"installments"`
	AsOf                 time.Time              `json:"as_of"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ListPlansResponse represents a list of plans
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}

// ToScheduleParams converts the preview request to schedule parameters.
func (r *PreviewScheduleRequest) ToScheduleParams() installment.ScheduleParams {
	return installment.ScheduleParams{
		NumberOfInstallments: r.NumberOfInstallments,
		DiscountPercent:      r.DiscountPercent,
		DueDateType:          r.DueDateType,
		StartDate:            r.StartDate,
	}
}

// ToPlan converts a create request to a domain plan. Installments are filled
// in by the service from the generated schedule.
func (r *CreatePlanRequest) ToPlan(ctx context.Context, totalAmount decimal.Decimal) *installment.Plan {
	return &installment.Plan{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INSTALLMENT_PLAN),
		StudentID:            r.StudentID,
		FeeStructureID:       r.FeeStructureID,
		TotalAmount:          totalAmount,
		DiscountPercent:      r.DiscountPercent,
		NumberOfInstallments: r.NumberOfInstallments,
		StartDate:            types.DateOnly(r.StartDate),
		DueDateType:          r.DueDateType,
		LateFeePercentage:    r.LateFeePercentage,
		GracePeriodDays:      r.GracePeriodDays,
		PlanStatus:           types.PlanStatusActive,
		Version:              1,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}

// NewPlanResponse creates a plan response with installment statuses derived
// against asOf.
func NewPlanResponse(p *installment.Plan, asOf time.Time) *PlanResponse {
	installments := make([]*InstallmentResponse, len(p.Installments))
	for i, inst := range p.Installments {
		installments[i] = &InstallmentResponse{
			ID:                inst.ID,
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			Amount:            inst.Amount,
			Status:            inst.StatusAsOf(asOf, p.GracePeriodDays, p.LateFeePercentage),
			LateFee:           inst.LateFeeAsOf(asOf, p.GracePeriodDays, p.LateFeePercentage),
			PaidAmount:        inst.PaidAmount,
			PaidDate:          inst.PaidDate,
			ReceiptNumber:     inst.ReceiptNumber,
		}
	}

	return &PlanResponse{
		ID:                   p.ID,
		StudentID:            p.StudentID,
		FeeStructureID:       p.FeeStructureID,
		TotalAmount:          p.TotalAmount,
		DiscountPercent:      p.DiscountPercent,
		NumberOfInstallments: p.NumberOfInstallments,
		StartDate:            p.StartDate,
		DueDateType:          p.DueDateType,
		LateFeePercentage:    p.LateFeePercentage,
		GracePeriodDays:      p.GracePeriodDays,
		PlanStatus:           p.PlanStatus,
		Installments:         installments,
		AsOf:                 asOf,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
