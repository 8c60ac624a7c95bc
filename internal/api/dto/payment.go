package dto

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/domain/payment"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest represents a request to record a payment. Manual
// payments start out pending and wait for verification; gateway payments
// arrive pre-verified by the gateway callback and are recorded completed.
type RecordPaymentRequest struct {
	StudentID     string              `json:"student_id" binding:"required"`
	PlanID        string              `json:"plan_id,omitempty"`
	InstallmentID string              `json:"installment_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount" binding:"required"`
	PaymentDate   time.Time           `json:"payment_date" binding:"required"`
	PaymentMethod types.PaymentMethod `json:"payment_method" binding:"required"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Category      string              `json:"category,omitempty"`
	Source        types.PaymentSource `json:"source,omitempty"`
	// GatewayIdentity names the gateway that verified a GATEWAY-sourced
	// payment. Ignored for manual payments.
	GatewayIdentity string `json:"gateway_identity,omitempty"`
}

// VerifyPaymentRequest carries the caller's view of the record version so two
// competing verifications resolve to exactly one winner.
type VerifyPaymentRequest struct {
	Version int `json:"version" binding:"required"`
}

// PaymentResponse represents a payment response
type PaymentResponse struct {
	ID            string              `json:"id"`
	StudentID     string              `json:"student_id"`
	PlanID        string              `json:"plan_id,omitempty"`
	InstallmentID string              `json:"installment_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentDate   time.Time           `json:"payment_date"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	TransactionID string              `json:"transaction_id,omitempty"`
	Category      string              `json:"category,omitempty"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	Source        types.PaymentSource `json:"source"`
	ReceiptNumber string              `json:"receipt_number,omitempty"`
	VerifiedBy    *string             `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time          `json:"verified_at,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ListPaymentsResponse represents a list of payments
type ListPaymentsResponse struct {
	Items []*PaymentResponse `json:"items"`
	Total int                `json:"total"`
}

// CollectionStatsResponse summarizes completed collections against expected
// totals for a plan: amounts and installment statuses derived against the
// as-of date, plus the plan's payment ledger tallies. SuccessRate is the
// percentage of recorded payments that completed, zero when none exist.
type CollectionStatsResponse struct {
	PlanID            string          `json:"plan_id"`
	ExpectedTotal     decimal.Decimal `json:"expected_total"`
	CollectedTotal    decimal.Decimal `json:"collected_total"`
	OutstandingTotal  decimal.Decimal `json:"outstanding_total"`
	LateFeesAccrued   decimal.Decimal `json:"late_fees_accrued"`
	PaidCount         int             `json:"paid_count"`
	OverdueCount      int             `json:"overdue_count"`
	PendingCount      int             `json:"pending_count"`
	TotalPayments     int             `json:"total_payments"`
	CompletedPayments int             `json:"completed_payments"`
	PendingPayments   int             `json:"pending_payments"`
	FailedPayments    int             `json:"failed_payments"`
	SuccessRate       decimal.Decimal `json:"success_rate"`
	AsOf              time.Time       `json:"as_of"`
}

// ToPayment converts a record request to a domain payment. Status and receipt
// assignment for gateway payments happen in the service, which owns the
// verification semantics.
func (r *RecordPaymentRequest) ToPayment(ctx context.Context) *payment.Payment {
	source := r.Source
	if source == "" {
		source = types.PaymentSourceManual
	}
	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		StudentID:     r.StudentID,
		PlanID:        r.PlanID,
		InstallmentID: r.InstallmentID,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		PaymentMethod: r.PaymentMethod,
		TransactionID: r.TransactionID,
		Category:      r.Category,
		PaymentStatus: types.PaymentStatusPending,
		Source:        source,
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// NewPaymentResponse creates a response from a domain payment.
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		StudentID:     p.StudentID,
		PlanID:        p.PlanID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Category:      p.Category,
		PaymentStatus: p.PaymentStatus,
		Source:        p.Source,
		ReceiptNumber: p.ReceiptNumber,
		VerifiedBy:    p.VerifiedBy,
		VerifiedAt:    p.VerifiedAt,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
