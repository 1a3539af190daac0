// Package fuelcalc holds the arithmetic behind fuel entries: unit price,
// distance between fill-ups, efficiency and estimated range.
package fuelcalc

import "github.com/shopspring/decimal"

// PricePerLiter returns totalPrice/liters rounded to whole rupiah, or 0 when
// liters is not positive.
func PricePerLiter(totalPrice, liters float64) float64 {
	if liters <= 0 {
		return 0
	}
	return decimal.NewFromFloat(totalPrice).
		Div(decimal.NewFromFloat(liters)).
		Round(0).
		InexactFloat64()
}

// Distance is the odometer delta, never negative. Either reading being zero
// means unknown.
func Distance(current, previous float64) float64 {
	if current <= 0 || previous <= 0 {
		return 0
	}
	if d := current - previous; d > 0 {
		return decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(previous)).InexactFloat64()
	}
	return 0
}

// Efficiency is km per liter to two decimals.
func Efficiency(current, previous, liters float64) float64 {
	d := Distance(current, previous)
	if d <= 0 || liters <= 0 {
		return 0
	}
	return decimal.NewFromFloat(d).
		Div(decimal.NewFromFloat(liters)).
		Round(2).
		InexactFloat64()
}

// EstimatedDistance is the range of a full tank at the given efficiency, in
// whole kilometers.
func EstimatedDistance(tankCapacity, efficiency float64) float64 {
	if tankCapacity <= 0 || efficiency <= 0 {
		return 0
	}
	return decimal.NewFromFloat(tankCapacity).
		Mul(decimal.NewFromFloat(efficiency)).
		Round(0).
		InexactFloat64()
}

// Average returns the mean of values to two decimals, 0 for none.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}

// Sum adds values without float drift, to two decimals.
func Sum(values []float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(2).InexactFloat64()
}
