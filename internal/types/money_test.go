package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundAmount(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(10.13).Equal(RoundAmount(decimal.NewFromFloat(10.125))))
	assert.True(t, decimal.NewFromFloat(10.12).Equal(RoundAmount(decimal.NewFromFloat(10.124))))
	assert.True(t, decimal.NewFromInt(10).Equal(RoundAmount(decimal.NewFromInt(10))))
}

func TestRoundAmountDown(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(33333.33).Equal(RoundAmountDown(decimal.RequireFromString("33333.3333"))))
	assert.True(t, decimal.NewFromFloat(10.12).Equal(RoundAmountDown(decimal.NewFromFloat(10.129))))
}

func TestPercentOf(t *testing.T) {
	assert.True(t, decimal.NewFromInt(1875).Equal(PercentOf(decimal.NewFromInt(37500), decimal.NewFromInt(5))))
	assert.True(t, decimal.NewFromInt(20000).Equal(PercentOf(decimal.NewFromInt(80000), decimal.NewFromInt(25))))
	assert.True(t, PercentOf(decimal.NewFromInt(80000), decimal.Zero).IsZero())
}

func TestIsValidPercentage(t *testing.T) {
	assert.True(t, IsValidPercentage(decimal.Zero))
	assert.True(t, IsValidPercentage(decimal.NewFromInt(100)))
	assert.True(t, IsValidPercentage(decimal.NewFromFloat(12.5)))
	assert.False(t, IsValidPercentage(decimal.NewFromInt(-1)))
	assert.False(t, IsValidPercentage(decimal.RequireFromString("100.01")))
}
