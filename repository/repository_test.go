package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/receipt-ocr/dto"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository(setupTestDB(t))

	volume, total := 6.667, 90000.0
	fuel := dto.FuelPertamax
	date := time.Date(2024, 5, 12, 14, 32, 0, 0, time.FixedZone("WIB", 7*3600))
	scan := &dto.ReceiptScanResponse{
		ScanID: "5f0c7c6e-8a4b-4d8e-9a57-0f1c2b3d4e5f",
		Engine: "tesseract",
		Source: dto.SourceImage,
		Receipt: dto.ExtractedReceiptData{
			VolumeLiters:    &volume,
			TotalPrice:      &total,
			FuelType:        &fuel,
			TransactionDate: &date,
			Confidence:      75,
			RawText:         "PERTAMAX",
		},
		QRPayload:   "SPBU-34.12345",
		ProcessedAt: "2024-05-12T07:33:00Z",
	}

	require.NoError(t, repo.SaveScan(ctx, scan))

	got, err := repo.GetScan(ctx, scan.ScanID)
	require.NoError(t, err)
	assert.Equal(t, scan.ScanID, got.ScanID)
	assert.Equal(t, "tesseract", got.Engine)
	assert.Equal(t, "SPBU-34.12345", got.QRPayload)
	assert.Equal(t, 75, got.Receipt.Confidence)
	assert.Equal(t, 6.667, *got.Receipt.VolumeLiters)
	assert.Equal(t, dto.FuelPertamax, *got.Receipt.FuelType)
	assert.True(t, date.Equal(*got.Receipt.TransactionDate))
	assert.Nil(t, got.Receipt.PricePerLiter)

	_, err = repo.GetScan(ctx, "missing")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func newEntry(id, vehicle string, day int, odometer float64) *dto.FuelEntry {
	return &dto.FuelEntry{
		ID:            id,
		VehicleID:     vehicle,
		Date:          time.Date(2024, 5, day, 8, 0, 0, 0, time.UTC),
		Odometer:      odometer,
		Liters:        30,
		TotalPrice:    405000,
		PricePerLiter: 13500,
		FuelType:      dto.FuelPertamax,
		IsFullTank:    true,
		CreatedAt:     time.Date(2024, 5, day, 8, 5, 0, 0, time.UTC),
	}
}

func TestFuelEntryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFuelEntryRepository(setupTestDB(t))

	first := newEntry("e1", "car-1", 1, 12000)
	second := newEntry("e2", "car-1", 10, 12350)
	distance, efficiency := 350.0, 11.67
	second.Distance, second.Efficiency = &distance, &efficiency
	other := newEntry("e3", "bike-1", 5, 800)

	for _, e := range []*dto.FuelEntry{first, second, other} {
		require.NoError(t, repo.CreateFuelEntry(ctx, e))
	}

	got, err := repo.GetFuelEntry(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, "car-1", got.VehicleID)
	assert.True(t, second.Date.Equal(got.Date))
	require.NotNil(t, got.Efficiency)
	assert.Equal(t, 11.67, *got.Efficiency)
	assert.True(t, got.IsFullTank)

	firstGot, err := repo.GetFuelEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, firstGot.Distance)

	list, err := repo.ListFuelEntries(ctx, "car-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID, "newest first")
	assert.Equal(t, "e1", list[1].ID)

	all, err := repo.ListFuelEntries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := repo.LatestFuelEntry(ctx, "car-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "e2", latest.ID)

	none, err := repo.LatestFuelEntry(ctx, "truck-9")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.DeleteFuelEntry(ctx, "e1"))
	_, err = repo.GetFuelEntry(ctx, "e1")
	assert.ErrorIs(t, err, dto.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteFuelEntry(ctx, "e1"), dto.ErrNotFound)
}

func TestListFuelEntriesEmpty(t *testing.T) {
	list, err := NewFuelEntryRepository(setupTestDB(t)).ListFuelEntries(context.Background(), "car-1")

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
