package types

import "github.com/shopspring/decimal"

// MinorUnitPlaces is the currency precision for all amount fields. Amounts
// are fixed-point decimals; float types must never carry money.
const MinorUnitPlaces = 2

var Hundred = decimal.NewFromInt(100)

// RoundAmount rounds half-up to the currency's minor unit.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// RoundAmountDown truncates toward zero at the currency's minor unit. Used
// where a remainder must be carried explicitly rather than rounded away.
func RoundAmountDown(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(MinorUnitPlaces)
}

// PercentOf returns amount * pct / 100 at currency precision.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundAmount(amount.Mul(pct).Div(Hundred))
}

// IsValidPercentage reports whether pct lies in [0, 100].
func IsValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(Hundred)
}
