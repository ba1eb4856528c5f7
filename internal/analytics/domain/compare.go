package domain

import "github.com/shopspring/decimal"

// PercentChange computes (current - previous) / previous * 100. A zero or
// negative previous has no meaningful baseline: the result is nil, never
// infinity and never an error.
func PercentChange(current, previous decimal.Decimal) *float64 {
	if previous.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	change, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return &change
}

// PercentChangeCount is PercentChange over plain counts.
func PercentChangeCount(current, previous int64) *float64 {
	return PercentChange(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}
