package installment

import (
	"time"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// Plan splits a student's total payable amount into dated obligations.
type Plan struct {
	ID                   string            `json:"id"`
	StudentID            string            `json:"student_id"`
	FeeStructureID       string            `json:"fee_structure_id"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	DiscountPercent      decimal.Decimal   `json:"discount_percent"`
	NumberOfInstallments int               `json:"number_of_installments"`
	StartDate            time.Time         `json:"start_date"`
	DueDateType          types.DueDateType `json:"due_date_type"`
	LateFeePercentage    decimal.Decimal   `json:"late_fee_percentage"`
	GracePeriodDays      int               `json:"grace_period_days"`
	PlanStatus           types.PlanStatus  `json:"plan_status"`
	// Version guards optimistic concurrent updates; stale writers lose.
	Version      int            `json:"version"`
	Installments []*Installment `json:"installments,omitempty"`

	types.BaseModel
}

// Installment is a single dated obligation of a plan. Its status is derived
// at query time from recorded payments and the as-of date, never stored.
type Installment struct {
	ID                string          `json:"id"`
	PlanID            string          `json:"plan_id"`
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	PaidDate          *time.Time      `json:"paid_date,omitempty"`
	ReceiptNumber     string          `json:"receipt_number,omitempty"`

	types.BaseModel
}

// Clone returns a deep copy of the plan including its installments.
func (p *Plan) Clone() *Plan {
	c := *p
	if p.Installments != nil {
		c.Installments = make([]*Installment, len(p.Installments))
		for i, inst := range p.Installments {
			c.Installments[i] = inst.Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of the installment.
func (i *Installment) Clone() *Installment {
	c := *i
	if i.PaidDate != nil {
		d := *i.PaidDate
		c.PaidDate = &d
	}
	return &c
}

// Validate validates the plan parameters before any schedule is produced.
func (p *Plan) Validate() error {
	if p.StudentID == "" {
		return ierr.NewError("student id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation)
	}
	if p.NumberOfInstallments < 1 {
		return ierr.NewError("invalid number of installments").
			WithHint("A plan needs at least one installment").
			WithReportableDetails(map[string]any{
				"number_of_installments": p.NumberOfInstallments,
			}).
			Mark(ierr.ErrValidation)
	}
	if !types.IsValidPercentage(p.DiscountPercent) {
		return ierr.NewError("discount percent out of range").
			WithHint("Discount percent must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	if p.LateFeePercentage.IsNegative() {
		return ierr.NewError("late fee percentage cannot be negative").
			WithHint("Late fee percentage must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if p.GracePeriodDays < 0 {
		return ierr.NewError("grace period cannot be negative").
			WithHint("Grace period days must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if p.StartDate.IsZero() {
		return ierr.NewError("start date is required").
			WithHint("Start date is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.DueDateType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Due date type is invalid").
			Mark(ierr.ErrValidation)
	}
	if p.TotalAmount.IsNegative() {
		return ierr.NewError("total amount cannot be negative").
			WithHint("Total amount must be non-negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// graceDeadline is the last calendar date an installment can be paid without
// accruing a late fee.
func (i *Installment) graceDeadline(graceDays int) time.Time {
	return types.DateOnly(i.DueDate).AddDate(0, 0, graceDays)
}

// LateFeeAsOf returns the late fee accrued by asOf. The fee is a one-time
// percentage of the installment amount: it appears once the grace deadline
// passes and is frozen at the payment date once paid.
func (i *Installment) LateFeeAsOf(asOf time.Time, graceDays int, lateFeePct decimal.Decimal) decimal.Decimal {
	ref := asOf
	if i.PaidDate != nil && i.PaidDate.Before(asOf) {
		ref = *i.PaidDate
	}
	if types.DateOnly(ref).After(i.graceDeadline(graceDays)) {
		return types.PercentOf(i.Amount, lateFeePct)
	}
	return decimal.Zero
}

// StatusAsOf derives the installment status against the supplied date.
// Paid: cumulative completed payments cover amount plus accrued late fee.
// Overdue: unpaid past the grace deadline. Otherwise pending.
func (i *Installment) StatusAsOf(asOf time.Time, graceDays int, lateFeePct decimal.Decimal) types.InstallmentStatus {
	fee := i.LateFeeAsOf(asOf, graceDays, lateFeePct)
	if i.PaidDate != nil && i.PaidAmount.GreaterThanOrEqual(i.Amount.Add(fee)) {
		return types.InstallmentStatusPaid
	}
	if types.DateOnly(asOf).After(i.graceDeadline(graceDays)) {
		return types.InstallmentStatusOverdue
	}
	return types.InstallmentStatusPending
}

// AmountDueAsOf returns the outstanding amount including any accrued late fee.
func (i *Installment) AmountDueAsOf(asOf time.Time, graceDays int, lateFeePct decimal.Decimal) decimal.Decimal {
	due := i.Amount.Add(i.LateFeeAsOf(asOf, graceDays, lateFeePct)).Sub(i.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// AllPaidAsOf reports whether every installment of the plan is paid. The plan
// reaches its terminal Completed state exactly then.
func (p *Plan) AllPaidAsOf(asOf time.Time) bool {
	if len(p.Installments) == 0 {
		return false
	}
	for _, inst := range p.Installments {
		if inst.StatusAsOf(asOf, p.GracePeriodDays, p.LateFeePercentage) != types.InstallmentStatusPaid {
			return false
		}
	}
	return true
}

// TableName returns the table name for the plan
func (p *Plan) TableName() string {
	return "installment_plans"
}

// TableName returns the table name for the installment
func (i *Installment) TableName() string {
	return "installments"
}
