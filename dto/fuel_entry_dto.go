package dto

import (
	"fmt"
	"strings"
	"time"
)

// FuelEntry is one fill-up of one vehicle.
type FuelEntry struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicle_id"`
	Date          time.Time `json:"date"`
	Odometer      float64   `json:"odometer"`
	Liters        float64   `json:"liters"`
	TotalPrice    float64   `json:"total_price"`
	PricePerLiter float64   `json:"price_per_liter"`
	FuelType      FuelType  `json:"fuel_type"`
	IsFullTank    bool      `json:"is_full_tank"`
	Distance      *float64  `json:"distance,omitempty"`
	Efficiency    *float64  `json:"efficiency,omitempty"` // km/L
	Notes         string    `json:"notes,omitempty"`
	ScanID        string    `json:"scan_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateFuelEntryRequest is the form a user submits, usually pre-filled from a scan.
type CreateFuelEntryRequest struct {
	VehicleID     string    `json:"vehicle_id" binding:"required"`
	Date          time.Time `json:"date" binding:"required"`
	Odometer      float64   `json:"odometer" binding:"gte=0"`
	Liters        float64   `json:"liters" binding:"gt=0"`
	TotalPrice    float64   `json:"total_price" binding:"gt=0"`
	PricePerLiter *float64  `json:"price_per_liter" binding:"omitempty,gt=0"`
	FuelType      FuelType  `json:"fuel_type" binding:"required"`
	IsFullTank    bool      `json:"is_full_tank"`
	Notes         string    `json:"notes"`
	ScanID        string    `json:"scan_id"`
}

// Validate checks the fields the binding tags cannot express.
func (r *CreateFuelEntryRequest) Validate() error {
	if strings.TrimSpace(r.VehicleID) == "" {
		return fmt.Errorf("%w: vehicle_id is required", ErrInvalidEntry)
	}
	if r.Liters <= 0 {
		return fmt.Errorf("%w: liters must be positive", ErrInvalidEntry)
	}
	if r.TotalPrice <= 0 {
		return fmt.Errorf("%w: total_price must be positive", ErrInvalidEntry)
	}
	if r.Odometer < 0 {
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalidEntry)
	}
	if !r.FuelType.Valid() {
		return fmt.Errorf("%w: unknown fuel_type %q", ErrInvalidEntry, r.FuelType)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	return nil
}

// UpdateFuelEntryRequest changes some fields of an entry; nil fields are kept.
type UpdateFuelEntryRequest struct {
	Date          *time.Time `json:"date"`
	Odometer      *float64   `json:"odometer" binding:"omitempty,gte=0"`
	Liters        *float64   `json:"liters" binding:"omitempty,gt=0"`
	TotalPrice    *float64   `json:"total_price" binding:"omitempty,gt=0"`
	PricePerLiter *float64   `json:"price_per_liter" binding:"omitempty,gt=0"`
	FuelType      *FuelType  `json:"fuel_type"`
	IsFullTank    *bool      `json:"is_full_tank"`
	Notes         *string    `json:"notes"`
}

// Validate checks the fields that are present.
func (r *UpdateFuelEntryRequest) Validate() error {
	if r.Liters != nil && *r.Liters <= 0 {
		return fmt.Errorf("%w: liters must be positive", ErrInvalidEntry)
	}
	if r.TotalPrice != nil && *r.TotalPrice <= 0 {
		return fmt.Errorf("%w: total_price must be positive", ErrInvalidEntry)
	}
	if r.PricePerLiter != nil && *r.PricePerLiter <= 0 {
		return fmt.Errorf("%w: price_per_liter must be positive", ErrInvalidEntry)
	}
	if r.Odometer != nil && *r.Odometer < 0 {
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalidEntry)
	}
	if r.FuelType != nil && !r.FuelType.Valid() {
		return fmt.Errorf("%w: unknown fuel_type %q", ErrInvalidEntry, *r.FuelType)
	}
	if r.Date != nil && r.Date.IsZero() {
		return fmt.Errorf("%w: date must not be empty", ErrInvalidEntry)
	}
	return nil
}

// VehicleStats summarises the fuel history of one vehicle.
type VehicleStats struct {
	VehicleID                  string     `json:"vehicle_id"`
	TotalSpending              float64    `json:"total_spending"`
	TotalLiters                float64    `json:"total_liters"`
	TotalDistance              float64    `json:"total_distance"`
	FillUpCount                int        `json:"fill_up_count"`
	AverageEfficiency          float64    `json:"average_efficiency"`
	EstimatedRemainingDistance float64    `json:"estimated_remaining_distance"`
	LastEntry                  *FuelEntry `json:"last_entry,omitempty"`
}
