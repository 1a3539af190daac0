package fuelreceipt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/receipt-ocr/dto"
)

const cleanReceipt = `SPBU 34.12345
PERTAMAX
VOLUME: 6,667 L
HARGA/LITER RP 13.500
TOTAL RP 90.000
12/05/2024 14:32`

func TestParseCleanReceipt(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse(cleanReceipt, nil)

	require.NotNil(t, data.FuelType)
	assert.Equal(t, dto.FuelPertamax, *data.FuelType)
	require.NotNil(t, data.VolumeLiters)
	assert.InDelta(t, 6.667, *data.VolumeLiters, 1e-9)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 13500.0, *data.PricePerLiter)
	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90000.0, *data.TotalPrice)
	require.NotNil(t, data.TransactionDate)
	assert.True(t, time.Date(2024, 5, 12, 14, 32, 0, 0, WIB).Equal(*data.TransactionDate))
	assert.Equal(t, "34.12345", data.StationCode)
	assert.Equal(t, 100, data.Confidence)
	assert.Empty(t, data.Backfilled)
	assert.Equal(t, cleanReceipt, data.RawText)
}

func TestParseBackfillsMissingTotal(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTAMAX\nVOLUME: 6,667 L\nHARGA/LITER RP 13.500\n12/05/2024", nil)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90005.0, *data.TotalPrice)
	assert.Equal(t, []string{dto.FieldTotalPrice}, data.Backfilled)
	assert.Equal(t, 100, data.Confidence)
}

func TestParsePertamaxTurbo(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("Pertamax Turbo\nVolume 10,00 L", nil)

	require.NotNil(t, data.FuelType)
	assert.Equal(t, dto.FuelPertamaxTurbo, *data.FuelType)
}

func TestParseNonFuelReceipt(t *testing.T) {
	p := NewParser(DefaultConfig())

	for _, text := range []string{
		"INDOMARET\nINDOMIE GORENG 3.500\nTOTAL RP 25.000\n12/05/2024",
		"ALFAMART\nSUSU UHT 2 @ 18.900\nROTI TAWAR 15.000\nTOTAL RP 52.800\n12/05/2024",
	} {
		data := p.Parse(text, nil)

		assert.Nil(t, data.FuelType)
		assert.Nil(t, data.VolumeLiters)
		assert.Nil(t, data.PricePerLiter)
		assert.Nil(t, data.TotalPrice)
		assert.Nil(t, data.TransactionDate)
		assert.Empty(t, data.StationCode)
		assert.LessOrEqual(t, data.Confidence, 10)
		assert.Equal(t, text, data.RawText)
	}
}

func TestParseCombinedVolumeAndPriceLine(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTALITE\n6,667 L @ 13.500\nTOTAL RP 90.000", nil)

	require.NotNil(t, data.VolumeLiters)
	assert.InDelta(t, 6.667, *data.VolumeLiters, 1e-9)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 13500.0, *data.PricePerLiter)
	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90000.0, *data.TotalPrice)
	assert.Empty(t, data.Backfilled)
}

func TestParseTotalGluedToCurrency(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTAMAX\nVOLUME 6,667 L\nTOTAL RP9O.OOO", nil)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90000.0, *data.TotalPrice)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 13499.0, *data.PricePerLiter)
	assert.Equal(t, []string{dto.FieldPricePerLiter}, data.Backfilled)
}

func TestParseTotalOnFollowingLine(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTAMAX\nVOLUME 6,667 L\nTOTAL\n90.000", nil)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90000.0, *data.TotalPrice)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 13499.0, *data.PricePerLiter)
}

func TestParseFallbackSkipsVolumeLine(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTALITE\nVOLUME 9,500 L\nTOTAL RP 95.000", nil)

	require.NotNil(t, data.VolumeLiters)
	assert.InDelta(t, 9.5, *data.VolumeLiters, 1e-9)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 10000.0, *data.PricePerLiter)
	assert.Equal(t, []string{dto.FieldPricePerLiter}, data.Backfilled)
}

func TestParseFallbackSkipsAmountAfterBareTotal(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTALITE\nVOLUME 1,500 L\nTOTAL\n15.000", nil)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 15000.0, *data.TotalPrice)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 10000.0, *data.PricePerLiter)
	assert.Equal(t, []string{dto.FieldPricePerLiter}, data.Backfilled)
}

func TestParseOCRNoise(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("pertalite\r\nLiter   1O,OO\r\nTotal Rp 1OO.OOO", nil)

	require.NotNil(t, data.VolumeLiters)
	assert.Equal(t, 10.0, *data.VolumeLiters)
	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 100000.0, *data.TotalPrice)
	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 10000.0, *data.PricePerLiter)
	assert.Equal(t, []string{dto.FieldPricePerLiter}, data.Backfilled)
}

func TestParseFallbackPricePerLiter(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("PERTALITE\nVOLUME 5,00 L\n10.000\nTOTAL RP 50.000", nil)

	require.NotNil(t, data.PricePerLiter)
	assert.Equal(t, 10000.0, *data.PricePerLiter)
	assert.Empty(t, data.Backfilled)
}

func TestParseFallbackNeedsFuelContext(t *testing.T) {
	p := NewParser(DefaultConfig())

	data := p.Parse("SPBU 34.12345\n12.000\nRP 50.000", nil)

	assert.Equal(t, "34.12345", data.StationCode)
	assert.Nil(t, data.PricePerLiter)
	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 50000.0, *data.TotalPrice)
	assert.Equal(t, WeightTotalPrice, data.Confidence)
}

func TestParseEngineConfidence(t *testing.T) {
	engine := 80.0

	data := NewParser(DefaultConfig()).Parse(cleanReceipt, &engine)
	require.NotNil(t, data.EngineConfidence)
	assert.Equal(t, 80.0, *data.EngineConfidence)
	assert.Equal(t, 100, data.Confidence)

	cfg := DefaultConfig()
	cfg.EngineWeight = 0.3
	data = NewParser(cfg).Parse(cleanReceipt, &engine)
	assert.Equal(t, 94, data.Confidence)
}

func TestParseCustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.MinTotalPrice = 100000

	data := NewParser(cfg).Parse(cleanReceipt, nil)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90005.0, *data.TotalPrice, "total below the floor is derived instead")
	assert.Equal(t, []string{dto.FieldTotalPrice}, data.Backfilled)
}

func TestParseIsIdempotent(t *testing.T) {
	p := NewParser(DefaultConfig())

	first := p.Parse(cleanReceipt, nil)
	second := p.Parse(cleanReceipt, nil)

	assert.Equal(t, first, second)
}

func TestParseConcurrent(t *testing.T) {
	p := NewParser(DefaultConfig())
	want := p.Parse(cleanReceipt, nil)

	var wg sync.WaitGroup
	results := make([]dto.ExtractedReceiptData, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Parse(cleanReceipt, nil)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestParseGarbage(t *testing.T) {
	p := NewParser(DefaultConfig())

	for _, text := range []string{"", "\x00\xff", "1,2,3 L", "@@@@ /L /L", "31/31/3131"} {
		assert.NotPanics(t, func() {
			data := p.Parse(text, nil)
			assert.GreaterOrEqual(t, data.Confidence, 0)
			assert.LessOrEqual(t, data.Confidence, 100)
		})
	}
}
