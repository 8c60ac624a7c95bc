package types

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// PaymentStatus represents the status of a payment. Pending is the only
// non-terminal state: completed and failed payments are immutable and any
// correction requires a new compensating payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment status: %s", s)
	}
	return nil
}

// IsTerminal reports whether the status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// PaymentMethod represents how a payment was made.
type PaymentMethod string

const (
	PaymentMethodOnlineTransfer PaymentMethod = "ONLINE_TRANSFER"
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodCash           PaymentMethod = "CASH"
	PaymentMethodCheque         PaymentMethod = "CHEQUE"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodOnlineTransfer,
		PaymentMethodCreditCard,
		PaymentMethodCash,
		PaymentMethodCheque,
	}
	if !lo.Contains(allowed, m) {
		return fmt.Errorf("invalid payment method: %s", m)
	}
	return nil
}

// PaymentSource identifies who recorded the payment. Gateway-sourced records
// arrive already verified by the external gateway callback.
type PaymentSource string

const (
	PaymentSourceManual  PaymentSource = "MANUAL"
	PaymentSourceGateway PaymentSource = "GATEWAY"
)

func (s PaymentSource) Validate() error {
	allowed := []PaymentSource{
		PaymentSourceManual,
		PaymentSourceGateway,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment source: %s", s)
	}
	return nil
}

// PaymentFilter represents the filter for listing payments
type PaymentFilter struct {
	StudentID     *string    `form:"student_id"`
	PlanID        *string    `form:"plan_id"`
	InstallmentID *string    `form:"installment_id"`
	PaymentStatus *string    `form:"payment_status"`
	PaymentMethod *string    `form:"payment_method"`
	StartTime     *time.Time `form:"start_time"`
	EndTime       *time.Time `form:"end_time"`
}
