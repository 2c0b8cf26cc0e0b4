package utils

import "math"

// CalculateRiskQuantity sizes an entry so that a stop stopFraction away from price
// loses riskFraction of equity: floor(riskFraction*equity / (price*stopFraction)),
// never less than one share. ok is false when the inputs cannot size an entry.
func CalculateRiskQuantity(equity float64, price float64, riskFraction float64, stopFraction float64) (qty float64, ok bool) {
	if price <= 0 || stopFraction <= 0 || riskFraction <= 0 || equity <= 0 {
		return 0, false
	}

	qty = math.Floor((riskFraction * equity) / (price * stopFraction))
	if qty < 1 {
		qty = 1
	}

	return qty, true
}

// CanAfford reports whether buying qty at price fits in cash.
func CanAfford(cash float64, price float64, qty float64) bool {
	return qty*price <= cash
}

// RoundToDecimalPrecision rounds the value down to the specified decimal precision.
func RoundToDecimalPrecision(value float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(value*multiplier) / multiplier
}

// PercentToFraction converts a configured percentage, e.g. 1.5, to 0.015.
func PercentToFraction(percent float64) float64 {
	return percent / 100.0
}
