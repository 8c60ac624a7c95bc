package student

import (
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// FeeProfile is the slice of a student record the fee engine consumes. It is
// resolved from the directory service and read-only to the engine.
type FeeProfile struct {
	StudentID             string                `json:"student_id"`
	Program               string                `json:"program"`
	Department            string                `json:"department,omitempty"`
	Category              types.StudentCategory `json:"category"`
	HostelRequired        bool                  `json:"hostel_required"`
	TransportRequired     bool                  `json:"transport_required"`
	ScholarshipType       string                `json:"scholarship_type,omitempty"`
	ScholarshipPercentage decimal.Decimal       `json:"scholarship_percentage"`
}

// Validate validates the fee profile
func (p *FeeProfile) Validate() error {
	if p.StudentID == "" {
		return ierr.NewError("student id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.Category.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Student category is invalid").
			Mark(ierr.ErrValidation)
	}
	if !types.IsValidPercentage(p.ScholarshipPercentage) {
		return ierr.NewError("scholarship percentage out of range").
			WithHint("Scholarship percentage must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"scholarship_percentage": p.ScholarshipPercentage,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// HasScholarship reports whether a scholarship discount applies on top of the
// category multiplier.
func (p *FeeProfile) HasScholarship() bool {
	return p.ScholarshipType != "" && p.ScholarshipPercentage.IsPositive()
}
