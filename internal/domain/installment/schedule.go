package installment

import (
	"time"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// ScheduleParams are the inputs of schedule generation. StartDate is the only
// time input: the function never reads the clock, so identical inputs always
// produce an identical schedule.
type ScheduleParams struct {
	NumberOfInstallments int
	DiscountPercent      decimal.Decimal
	DueDateType          types.DueDateType
	StartDate            time.Time
}

// ScheduledInstallment is one dated obligation of a generated schedule.
type ScheduledInstallment struct {
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
}

func (p ScheduleParams) Validate() error {
	if p.NumberOfInstallments < 1 {
		return ierr.NewError("invalid number of installments").
			WithHint("A schedule needs at least one installment").
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
	return nil
}

// GenerateSchedule splits totalAmount into dated installments. The discounted
// total is divided evenly, rounded down to the currency's minor unit, and the
// rounding remainder lands on the final installment so the schedule sum is
// exact. Due dates are spaced per the due-date type, each derived from the
// start date with day-of-month clamping.
func GenerateSchedule(totalAmount decimal.Decimal, params ScheduleParams) ([]ScheduledInstallment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if totalAmount.IsNegative() {
		return nil, ierr.NewError("total amount cannot be negative").
			WithHint("Total amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	n := params.NumberOfInstallments
	discountedTotal := types.RoundAmount(
		totalAmount.Mul(types.Hundred.Sub(params.DiscountPercent)).Div(types.Hundred))

	perInstallment := types.RoundAmountDown(discountedTotal.Div(decimal.NewFromInt(int64(n))))
	remainder := discountedTotal.Sub(perInstallment.Mul(decimal.NewFromInt(int64(n))))

	schedule := make([]ScheduledInstallment, 0, n)
	for i := 0; i < n; i++ {
		dueDate, err := types.NthDueDate(params.StartDate, i, params.DueDateType)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to compute installment due date").
				Mark(ierr.ErrValidation)
		}

		amount := perInstallment
		if i == n-1 {
			amount = amount.Add(remainder)
		}

		schedule = append(schedule, ScheduledInstallment{
			InstallmentNumber: i + 1,
			DueDate:           dueDate,
			Amount:            amount,
		})
	}

	return schedule, nil
}
