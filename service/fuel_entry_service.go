package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/utils/fuelcalc"
)

// FuelEntryStore persists fuel entries.
type FuelEntryStore interface {
	CreateFuelEntry(ctx context.Context, entry *dto.FuelEntry) error
	GetFuelEntry(ctx context.Context, id string) (*dto.FuelEntry, error)
	// ListFuelEntries returns entries newest first; an empty vehicleID lists all.
	ListFuelEntries(ctx context.Context, vehicleID string) ([]dto.FuelEntry, error)
	// LatestFuelEntry returns the entry with the highest odometer, or nil.
	LatestFuelEntry(ctx context.Context, vehicleID string) (*dto.FuelEntry, error)
	UpdateFuelEntry(ctx context.Context, entry *dto.FuelEntry) error
	DeleteFuelEntry(ctx context.Context, id string) error
}

type FuelEntryService struct {
	store FuelEntryStore
	now   func() time.Time
}

func NewFuelEntryService(store FuelEntryStore) *FuelEntryService {
	return &FuelEntryService{store: store, now: time.Now}
}

// Create stores a fill-up. A missing unit price is derived from total and
// liters; distance and efficiency are computed against the previous entry
// of the same vehicle when this one is a full tank.
func (s *FuelEntryService) Create(ctx context.Context, req dto.CreateFuelEntryRequest) (*dto.FuelEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pricePerLiter := fuelcalc.PricePerLiter(req.TotalPrice, req.Liters)
	if req.PricePerLiter != nil && *req.PricePerLiter > 0 {
		pricePerLiter = *req.PricePerLiter
	}

	entry := &dto.FuelEntry{
		ID:            uuid.NewString(),
		VehicleID:     strings.TrimSpace(req.VehicleID),
		Date:          req.Date,
		Odometer:      req.Odometer,
		Liters:        req.Liters,
		TotalPrice:    req.TotalPrice,
		PricePerLiter: pricePerLiter,
		FuelType:      req.FuelType,
		IsFullTank:    req.IsFullTank,
		Notes:         strings.TrimSpace(req.Notes),
		ScanID:        req.ScanID,
		CreatedAt:     s.now().UTC(),
	}

	previous, err := s.store.LatestFuelEntry(ctx, entry.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous entry: %w", err)
	}
	if previous != nil && req.IsFullTank {
		distance := fuelcalc.Distance(req.Odometer, previous.Odometer)
		efficiency := fuelcalc.Efficiency(req.Odometer, previous.Odometer, req.Liters)
		entry.Distance = &distance
		entry.Efficiency = &efficiency
	}

	if err := s.store.CreateFuelEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create fuel entry: %w", err)
	}

	log.Info().
		Str("entry_id", entry.ID).
		Str("vehicle_id", entry.VehicleID).
		Float64("liters", entry.Liters).
		Float64("price_per_liter", entry.PricePerLiter).
		Msg("fuel entry created")

	return entry, nil
}

func (s *FuelEntryService) Get(ctx context.Context, id string) (*dto.FuelEntry, error) {
	return s.store.GetFuelEntry(ctx, id)
}

func (s *FuelEntryService) List(ctx context.Context, vehicleID string) ([]dto.FuelEntry, error) {
	return s.store.ListFuelEntries(ctx, strings.TrimSpace(vehicleID))
}

// Update applies the fields present in req. The unit price is derived again
// when total or liters change without an explicit price; distance and
// efficiency keep their values from creation.
func (s *FuelEntryService) Update(ctx context.Context, id string, req dto.UpdateFuelEntryRequest) (*dto.FuelEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.store.GetFuelEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Odometer != nil {
		entry.Odometer = *req.Odometer
	}
	if req.Liters != nil {
		entry.Liters = *req.Liters
	}
	if req.TotalPrice != nil {
		entry.TotalPrice = *req.TotalPrice
	}
	if req.FuelType != nil {
		entry.FuelType = *req.FuelType
	}
	if req.IsFullTank != nil {
		entry.IsFullTank = *req.IsFullTank
	}
	if req.Notes != nil {
		entry.Notes = strings.TrimSpace(*req.Notes)
	}
	switch {
	case req.PricePerLiter != nil:
		entry.PricePerLiter = *req.PricePerLiter
	case req.TotalPrice != nil || req.Liters != nil:
		entry.PricePerLiter = fuelcalc.PricePerLiter(entry.TotalPrice, entry.Liters)
	}

	if err := s.store.UpdateFuelEntry(ctx, entry); err != nil {
		return nil, err
	}

	log.Info().
		Str("entry_id", entry.ID).
		Float64("price_per_liter", entry.PricePerLiter).
		Msg("fuel entry updated")

	return entry, nil
}

func (s *FuelEntryService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteFuelEntry(ctx, id)
}

// Stats summarises a vehicle's history. tankCapacity (liters) is optional
// and only feeds the estimated range.
func (s *FuelEntryService) Stats(ctx context.Context, vehicleID string, tankCapacity float64) (*dto.VehicleStats, error) {
	entries, err := s.store.ListFuelEntries(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fuel entries: %w", err)
	}

	stats := &dto.VehicleStats{VehicleID: vehicleID, FillUpCount: len(entries)}
	var efficiencies, spending, liters, distances []float64
	for _, e := range entries {
		spending = append(spending, e.TotalPrice)
		liters = append(liters, e.Liters)
		if e.Distance != nil {
			distances = append(distances, *e.Distance)
		}
		if e.Efficiency != nil && *e.Efficiency > 0 {
			efficiencies = append(efficiencies, *e.Efficiency)
		}
	}

	stats.TotalSpending = fuelcalc.Sum(spending)
	stats.TotalLiters = fuelcalc.Sum(liters)
	stats.TotalDistance = fuelcalc.Sum(distances)
	stats.AverageEfficiency = fuelcalc.Average(efficiencies)
	stats.EstimatedRemainingDistance = fuelcalc.EstimatedDistance(tankCapacity, stats.AverageEfficiency)
	if len(entries) > 0 {
		last := entries[0]
		stats.LastEntry = &last
	}

	return stats, nil
}
