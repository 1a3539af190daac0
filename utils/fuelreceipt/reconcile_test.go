package fuelreceipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/receipt-ocr/dto"
)

func ptr(v float64) *float64 { return &v }

func TestReconcileBackfillsTotal(t *testing.T) {
	out := Reconcile(Extraction{VolumeLiters: ptr(6.667), PricePerLiter: ptr(13500)})

	require.NotNil(t, out.TotalPrice)
	assert.Equal(t, 90005.0, *out.TotalPrice)
	assert.Equal(t, []string{dto.FieldTotalPrice}, out.Backfilled)
}

func TestReconcileBackfillsPricePerLiter(t *testing.T) {
	out := Reconcile(Extraction{VolumeLiters: ptr(6.667), TotalPrice: ptr(90000)})

	require.NotNil(t, out.PricePerLiter)
	assert.Equal(t, 13499.0, *out.PricePerLiter)
	assert.Equal(t, []string{dto.FieldPricePerLiter}, out.Backfilled)
}

func TestReconcileNeverOverwrites(t *testing.T) {
	in := Extraction{VolumeLiters: ptr(6.667), PricePerLiter: ptr(13500), TotalPrice: ptr(90000)}

	out := Reconcile(in)

	assert.Equal(t, 90000.0, *out.TotalPrice)
	assert.Equal(t, 13500.0, *out.PricePerLiter)
	assert.Empty(t, out.Backfilled)
}

func TestReconcileNeverDerivesVolume(t *testing.T) {
	out := Reconcile(Extraction{PricePerLiter: ptr(13500), TotalPrice: ptr(90000)})

	assert.Nil(t, out.VolumeLiters)
	assert.Empty(t, out.Backfilled)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	in := Extraction{VolumeLiters: ptr(10), PricePerLiter: ptr(10000)}

	_ = Reconcile(in)

	assert.Nil(t, in.TotalPrice)
	assert.Empty(t, in.Backfilled)
}

func TestReconcileTotalMatchesRoundedProduct(t *testing.T) {
	cases := [][2]float64{
		{6.667, 13500},
		{1.5, 10000},
		{35.27, 6800},
		{12.345, 12950},
		{0.5, 9999},
	}

	for _, c := range cases {
		want := decimal.NewFromFloat(c[0]).Mul(decimal.NewFromFloat(c[1])).Round(0).InexactFloat64()

		out := Reconcile(Extraction{VolumeLiters: ptr(c[0]), PricePerLiter: ptr(c[1])})

		require.NotNil(t, out.TotalPrice)
		assert.Equal(t, want, *out.TotalPrice, "volume %v price %v", c[0], c[1])
	}
}
