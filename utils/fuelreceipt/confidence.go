package fuelreceipt

import "math"

// Per-field completeness weights; they sum to 100.
const (
	WeightFuelType      = 25
	WeightVolume        = 25
	WeightTotalPrice    = 25
	WeightPricePerLiter = 15
	WeightDate          = 10
)

// Score rates an extraction from 0 to 100 by which fields are populated.
// When engineConfidence is known and engineWeight is above zero, the
// completeness score is blended with it as local*(1-w) + engine*w.
func Score(e Extraction, engineConfidence *float64, engineWeight float64) int {
	local := 0
	if e.FuelType != nil {
		local += WeightFuelType
	}
	if e.VolumeLiters != nil {
		local += WeightVolume
	}
	if e.TotalPrice != nil {
		local += WeightTotalPrice
	}
	if e.PricePerLiter != nil {
		local += WeightPricePerLiter
	}
	if e.TransactionDate != nil {
		local += WeightDate
	}

	score := float64(local)
	if engineConfidence != nil && engineWeight > 0 && !math.IsNaN(*engineConfidence) {
		w := math.Min(engineWeight, 1)
		engine := math.Max(0, math.Min(100, *engineConfidence))
		score = score*(1-w) + engine*w
	}

	return int(math.Max(0, math.Min(100, math.Round(score))))
}
