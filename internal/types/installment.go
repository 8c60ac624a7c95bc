package types

import (
	"fmt"

	"github.com/samber/lo"
)

// DueDateType controls how installment due dates are spaced.
type DueDateType string

const (
	DueDateTypeOneTime   DueDateType = "ONE_TIME"
	DueDateTypeMonthly   DueDateType = "MONTHLY"
	DueDateTypeQuarterly DueDateType = "QUARTERLY"
	DueDateTypeSemester  DueDateType = "SEMESTER"
)

func (t DueDateType) String() string {
	return string(t)
}

func (t DueDateType) Validate() error {
	allowed := []DueDateType{
		DueDateTypeOneTime,
		DueDateTypeMonthly,
		DueDateTypeQuarterly,
		DueDateTypeSemester,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid due date type: %s", t)
	}
	return nil
}

// MonthsPerPeriod returns the calendar months between consecutive due dates.
// One-time plans have a single due date, so the period is zero.
func (t DueDateType) MonthsPerPeriod() (int, error) {
	switch t {
	case DueDateTypeOneTime:
		return 0, nil
	case DueDateTypeMonthly:
		return 1, nil
	case DueDateTypeQuarterly:
		return 3, nil
	case DueDateTypeSemester:
		return 6, nil
	default:
		return 0, fmt.Errorf("invalid due date type: %s", t)
	}
}

// PlanStatus represents the lifecycle status of an installment plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
)

func (s PlanStatus) String() string {
	return string(s)
}

func (s PlanStatus) Validate() error {
	allowed := []PlanStatus{
		PlanStatusActive,
		PlanStatusCompleted,
		PlanStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid plan status: %s", s)
	}
	return nil
}

// InstallmentStatus is a derived, query-time value. It is recomputed against
// an as-of date and never stored.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

func (s InstallmentStatus) String() string {
	return string(s)
}
