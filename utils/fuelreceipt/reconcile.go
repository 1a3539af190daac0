package fuelreceipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fueltrack/receipt-ocr/dto"
)

// Extraction holds the fields detected on a receipt before scoring.
type Extraction struct {
	VolumeLiters    *float64
	PricePerLiter   *float64
	TotalPrice      *float64
	FuelType        *dto.FuelType
	TransactionDate *time.Time
	StationCode     string

	// Backfilled lists the fields Reconcile derived rather than detected.
	Backfilled []string
}

// Reconcile fills a missing total or unit price from the other two values.
// Detected values are never overwritten and volume is never derived.
func Reconcile(e Extraction) Extraction {
	out := e
	out.Backfilled = append([]string(nil), e.Backfilled...)

	if out.TotalPrice == nil && out.VolumeLiters != nil && out.PricePerLiter != nil {
		total := decimal.NewFromFloat(*out.VolumeLiters).
			Mul(decimal.NewFromFloat(*out.PricePerLiter)).
			Round(0).
			InexactFloat64()
		out.TotalPrice = &total
		out.Backfilled = append(out.Backfilled, dto.FieldTotalPrice)
	}

	if out.PricePerLiter == nil && out.TotalPrice != nil && out.VolumeLiters != nil && *out.VolumeLiters > 0 {
		price := decimal.NewFromFloat(*out.TotalPrice).
			Div(decimal.NewFromFloat(*out.VolumeLiters)).
			Round(0).
			InexactFloat64()
		out.PricePerLiter = &price
		out.Backfilled = append(out.Backfilled, dto.FieldPricePerLiter)
	}

	return out
}
