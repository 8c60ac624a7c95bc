package installment

import (
	"testing"
	"time"

	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInstallmentStatusAsOf_OverdueWithLateFee(t *testing.T) {
	inst := &Installment{
		ID:                "inst_1",
		InstallmentNumber: 1,
		DueDate:           date(2024, time.February, 15),
		Amount:            decimal.NewFromInt(37500),
		PaidAmount:        decimal.Zero,
	}
	graceDays := 7
	lateFeePct := decimal.NewFromInt(5)
	asOf := date(2024, time.February, 25)

	assert.Equal(t, types.InstallmentStatusOverdue, inst.StatusAsOf(asOf, graceDays, lateFeePct))
	assert.True(t, decimal.NewFromInt(1875).Equal(inst.LateFeeAsOf(asOf, graceDays, lateFeePct)),
		"late fee %s", inst.LateFeeAsOf(asOf, graceDays, lateFeePct))
	assert.True(t, decimal.NewFromInt(39375).Equal(inst.AmountDueAsOf(asOf, graceDays, lateFeePct)))
}

func TestInstallmentStatusAsOf_GraceBoundary(t *testing.T) {
	inst := &Installment{
		DueDate: date(2024, time.February, 15),
		Amount:  decimal.NewFromInt(37500),
	}
	graceDays := 7
	lateFeePct := decimal.NewFromInt(5)

	// On the last day of grace there is no late fee and no overdue status.
	onDeadline := date(2024, time.February, 22)
	assert.Equal(t, types.InstallmentStatusPending, inst.StatusAsOf(onDeadline, graceDays, lateFeePct))
	assert.True(t, inst.LateFeeAsOf(onDeadline, graceDays, lateFeePct).IsZero())

	// One day later the fee appears in full.
	pastDeadline := date(2024, time.February, 23)
	assert.Equal(t, types.InstallmentStatusOverdue, inst.StatusAsOf(pastDeadline, graceDays, lateFeePct))
	assert.True(t, decimal.NewFromInt(1875).Equal(inst.LateFeeAsOf(pastDeadline, graceDays, lateFeePct)))
}

func TestInstallmentStatusAsOf_BeforeDueDate(t *testing.T) {
	inst := &Installment{
		DueDate: date(2024, time.February, 15),
		Amount:  decimal.NewFromInt(37500),
	}
	asOf := date(2024, time.February, 1)

	assert.Equal(t, types.InstallmentStatusPending, inst.StatusAsOf(asOf, 7, decimal.NewFromInt(5)))
	assert.True(t, inst.LateFeeAsOf(asOf, 7, decimal.NewFromInt(5)).IsZero())
}

func TestInstallmentStatusAsOf_PaidWithinGrace(t *testing.T) {
	paidDate := date(2024, time.February, 18)
	inst := &Installment{
		DueDate:    date(2024, time.February, 15),
		Amount:     decimal.NewFromInt(37500),
		PaidAmount: decimal.NewFromInt(37500),
		PaidDate:   &paidDate,
	}

	// Paid within grace, so no late fee ever accrues, even when queried a
	// year later.
	asOf := date(2025, time.February, 25)
	assert.Equal(t, types.InstallmentStatusPaid, inst.StatusAsOf(asOf, 7, decimal.NewFromInt(5)))
	assert.True(t, inst.LateFeeAsOf(asOf, 7, decimal.NewFromInt(5)).IsZero())
	assert.True(t, inst.AmountDueAsOf(asOf, 7, decimal.NewFromInt(5)).IsZero())
}

func TestInstallmentStatusAsOf_PaidLateFreezesFee(t *testing.T) {
	paidDate := date(2024, time.March, 1)
	inst := &Installment{
		DueDate:    date(2024, time.February, 15),
		Amount:     decimal.NewFromInt(37500),
		PaidAmount: decimal.NewFromInt(39375),
		PaidDate:   &paidDate,
	}
	graceDays := 7
	lateFeePct := decimal.NewFromInt(5)

	// The fee is a one-time charge frozen at the payment date; it does not
	// keep growing after settlement.
	asOf := date(2024, time.June, 1)
	assert.True(t, decimal.NewFromInt(1875).Equal(inst.LateFeeAsOf(asOf, graceDays, lateFeePct)))
	assert.Equal(t, types.InstallmentStatusPaid, inst.StatusAsOf(asOf, graceDays, lateFeePct))
}

func TestInstallmentStatusAsOf_PartialPaymentStaysOverdue(t *testing.T) {
	paidDate := date(2024, time.March, 1)
	inst := &Installment{
		DueDate:    date(2024, time.February, 15),
		Amount:     decimal.NewFromInt(37500),
		PaidAmount: decimal.NewFromInt(20000),
		PaidDate:   &paidDate,
	}

	asOf := date(2024, time.March, 5)
	assert.Equal(t, types.InstallmentStatusOverdue, inst.StatusAsOf(asOf, 7, decimal.NewFromInt(5)))
	assert.True(t, decimal.NewFromInt(19375).Equal(inst.AmountDueAsOf(asOf, 7, decimal.NewFromInt(5))))
}

func TestPlanAllPaidAsOf(t *testing.T) {
	paid := date(2024, time.January, 20)
	plan := &Plan{
		GracePeriodDays:   7,
		LateFeePercentage: decimal.NewFromInt(5),
		Installments: []*Installment{
			{
				DueDate:    date(2024, time.January, 15),
				Amount:     decimal.NewFromInt(500),
				PaidAmount: decimal.NewFromInt(500),
				PaidDate:   &paid,
			},
			{
				DueDate: date(2024, time.February, 15),
				Amount:  decimal.NewFromInt(500),
			},
		},
	}

	asOf := date(2024, time.February, 1)
	assert.False(t, plan.AllPaidAsOf(asOf))

	paid2 := date(2024, time.February, 10)
	plan.Installments[1].PaidAmount = decimal.NewFromInt(500)
	plan.Installments[1].PaidDate = &paid2
	assert.True(t, plan.AllPaidAsOf(date(2024, time.February, 12)))
}

func TestPlanAllPaidAsOf_EmptyPlan(t *testing.T) {
	plan := &Plan{}
	assert.False(t, plan.AllPaidAsOf(date(2024, time.January, 1)))
}

func TestPlanValidate(t *testing.T) {
	valid := func() *Plan {
		return &Plan{
			StudentID:            "std_1",
			TotalAmount:          decimal.NewFromInt(150000),
			DiscountPercent:      decimal.Zero,
			NumberOfInstallments: 4,
			StartDate:            date(2024, time.January, 15),
			DueDateType:          types.DueDateTypeMonthly,
			LateFeePercentage:    decimal.NewFromInt(5),
			GracePeriodDays:      7,
		}
	}

	assert.NoError(t, valid().Validate())

	p := valid()
	p.StudentID = ""
	assert.Error(t, p.Validate())

	p = valid()
	p.NumberOfInstallments = 0
	assert.Error(t, p.Validate())

	p = valid()
	p.LateFeePercentage = decimal.NewFromInt(-1)
	assert.Error(t, p.Validate())

	p = valid()
	p.GracePeriodDays = -1
	assert.Error(t, p.Validate())

	p = valid()
	p.TotalAmount = decimal.NewFromInt(-1)
	assert.Error(t, p.Validate())
}
