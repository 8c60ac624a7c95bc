package payment

import (
	"time"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is a recorded payment transaction. A payment may pre-date
// installment granularity, so the installment link is optional; unlinked
// payments participate in plan-level aggregates only.
type Payment struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"student_id"`
	PlanID        string          `json:"plan_id,omitempty"`
	InstallmentID string          `json:"installment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Category      string              `json:"category,omitempty"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	Source        types.PaymentSource `json:"source"`
	ReceiptNumber string              `json:"receipt_number,omitempty"`
	VerifiedBy    *string             `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time          `json:"verified_at,omitempty"`
	// Version guards optimistic concurrent updates: two competing
	// verifications of the same payment produce exactly one winner.
	Version int `json:"version"`

	types.BaseModel
}

// Clone returns a deep copy of the payment.
func (p *Payment) Clone() *Payment {
	c := *p
	if p.VerifiedBy != nil {
		v := *p.VerifiedBy
		c.VerifiedBy = &v
	}
	if p.VerifiedAt != nil {
		at := *p.VerifiedAt
		c.VerifiedAt = &at
	}
	return &c
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.StudentID == "" {
		return ierr.NewError("student id is required").
			WithHint("Student ID is required").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentMethod.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Payment method is invalid").
			Mark(ierr.ErrValidation)
	}
	if p.PaymentDate.IsZero() {
		return ierr.NewError("payment date is required").
			WithHint("Payment date is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.Source.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Payment source is invalid").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MarkCompleted transitions a pending payment to completed. Completed and
// failed are terminal: corrections require a new compensating payment, never
// an in-place flip back to pending.
func (p *Payment) MarkCompleted(verifiedBy string, at time.Time) error {
	if err := p.guardTransition(types.PaymentStatusCompleted); err != nil {
		return err
	}
	p.PaymentStatus = types.PaymentStatusCompleted
	p.VerifiedBy = &verifiedBy
	p.VerifiedAt = &at
	return nil
}

// MarkFailed transitions a pending payment to failed.
func (p *Payment) MarkFailed(verifiedBy string, at time.Time) error {
	if err := p.guardTransition(types.PaymentStatusFailed); err != nil {
		return err
	}
	p.PaymentStatus = types.PaymentStatusFailed
	p.VerifiedBy = &verifiedBy
	p.VerifiedAt = &at
	return nil
}

func (p *Payment) guardTransition(to types.PaymentStatus) error {
	if p.PaymentStatus != types.PaymentStatusPending {
		return ierr.NewError("invalid payment state transition").
			WithHintf("Payment is already %s", p.PaymentStatus).
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"from":       p.PaymentStatus,
				"to":         to,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// TableName returns the table name for the payment
func (p *Payment) TableName() string {
	return "payments"
}
