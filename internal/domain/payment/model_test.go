package payment

import (
	"testing"
	"time"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingPayment() *Payment {
	return &Payment{
		ID:            "pay_1",
		StudentID:     "std_1",
		Amount:        decimal.NewFromInt(37500),
		PaymentDate:   time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: types.PaymentMethodOnlineTransfer,
		PaymentStatus: types.PaymentStatusPending,
		Source:        types.PaymentSourceManual,
	}
}

func TestPaymentMarkCompleted(t *testing.T) {
	p := pendingPayment()
	at := time.Date(2024, time.February, 11, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.MarkCompleted("admin_1", at))
	assert.Equal(t, types.PaymentStatusCompleted, p.PaymentStatus)
	require.NotNil(t, p.VerifiedBy)
	assert.Equal(t, "admin_1", *p.VerifiedBy)
	require.NotNil(t, p.VerifiedAt)
	assert.Equal(t, at, *p.VerifiedAt)
}

func TestPaymentMarkFailed(t *testing.T) {
	p := pendingPayment()
	at := time.Date(2024, time.February, 11, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.MarkFailed("admin_1", at))
	assert.Equal(t, types.PaymentStatusFailed, p.PaymentStatus)
}

func TestPaymentTerminalStatesRejectTransitions(t *testing.T) {
	at := time.Now().UTC()

	completed := pendingPayment()
	require.NoError(t, completed.MarkCompleted("admin_1", at))

	failed := pendingPayment()
	require.NoError(t, failed.MarkFailed("admin_1", at))

	for _, p := range []*Payment{completed, failed} {
		err := p.MarkCompleted("admin_2", at)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))

		err = p.MarkFailed("admin_2", at)
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidOperation(err))
	}
}

func TestPaymentValidate(t *testing.T) {
	assert.NoError(t, pendingPayment().Validate())

	p := pendingPayment()
	p.StudentID = ""
	assert.Error(t, p.Validate())

	p = pendingPayment()
	p.Amount = decimal.Zero
	assert.Error(t, p.Validate())

	p = pendingPayment()
	p.Amount = decimal.NewFromInt(-100)
	assert.Error(t, p.Validate())

	p = pendingPayment()
	p.PaymentMethod = "BARTER"
	assert.Error(t, p.Validate())

	p = pendingPayment()
	p.PaymentDate = time.Time{}
	assert.Error(t, p.Validate())

	p = pendingPayment()
	p.Source = "UNKNOWN"
	assert.Error(t, p.Validate())
}
