package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceResponse is a display-ready projection joining the fee breakdown,
// the installment schedule with derived statuses, and the payment history.
// It is computed on demand and never persisted.
type InvoiceResponse struct {
	StudentID      string             `json:"student_id"`
	FeeStructureID string             `json:"fee_structure_id"`
	PlanID         string             `json:"plan_id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	Breakdown      *FeeBreakdown      `json:"breakdown"`
	Plan           *PlanResponse      `json:"plan"`
	Payments       []*PaymentResponse `json:"payments"`
	TotalPayable   decimal.Decimal    `json:"total_payable"`
	TotalPaid      decimal.Decimal    `json:"total_paid"`
	TotalLateFees  decimal.Decimal    `json:"total_late_fees"`
	BalanceDue     decimal.Decimal    `json:"balance_due"`
}
