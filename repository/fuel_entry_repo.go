package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fueltrack/receipt-ocr/dto"
)

const fuelEntryColumns = `id, vehicle_id, date, odometer, liters, total_price, price_per_liter,
	fuel_type, is_full_tank, distance, efficiency, notes, scan_id, created_at`

// FuelEntryRepository implements service.FuelEntryStore with SQLite.
type FuelEntryRepository struct {
	db *sql.DB
}

func NewFuelEntryRepository(db *sql.DB) *FuelEntryRepository {
	return &FuelEntryRepository{db: db}
}

func (r *FuelEntryRepository) CreateFuelEntry(ctx context.Context, e *dto.FuelEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fuel_entries (`+fuelEntryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.VehicleID,
		formatTime(e.Date),
		e.Odometer,
		e.Liters,
		e.TotalPrice,
		e.PricePerLiter,
		string(e.FuelType),
		e.IsFullTank,
		nullFloat(e.Distance),
		nullFloat(e.Efficiency),
		e.Notes,
		e.ScanID,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create fuel entry: %w", err)
	}
	return nil
}

func (r *FuelEntryRepository) GetFuelEntry(ctx context.Context, id string) (*dto.FuelEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+fuelEntryColumns+` FROM fuel_entries WHERE id = ?`, id)
	entry, err := scanFuelEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: fuel entry %s", dto.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel entry: %w", err)
	}
	return entry, nil
}

func (r *FuelEntryRepository) ListFuelEntries(ctx context.Context, vehicleID string) ([]dto.FuelEntry, error) {
	query := `SELECT ` + fuelEntryColumns + ` FROM fuel_entries WHERE 1=1`
	args := []any{}

	if vehicleID != "" {
		query += " AND vehicle_id = ?"
		args = append(args, vehicleID)
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fuel entries: %w", err)
	}
	defer rows.Close()

	entries := []dto.FuelEntry{}
	for rows.Next() {
		entry, err := scanFuelEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fuel entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list fuel entries: %w", err)
	}
	return entries, nil
}

func (r *FuelEntryRepository) LatestFuelEntry(ctx context.Context, vehicleID string) (*dto.FuelEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fuelEntryColumns+` FROM fuel_entries WHERE vehicle_id = ? ORDER BY odometer DESC LIMIT 1`,
		vehicleID,
	)
	entry, err := scanFuelEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest fuel entry: %w", err)
	}
	return entry, nil
}

func (r *FuelEntryRepository) UpdateFuelEntry(ctx context.Context, e *dto.FuelEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fuel_entries SET date = ?, odometer = ?, liters = ?, total_price = ?, price_per_liter = ?,
			fuel_type = ?, is_full_tank = ?, notes = ? WHERE id = ?`,
		formatTime(e.Date),
		e.Odometer,
		e.Liters,
		e.TotalPrice,
		e.PricePerLiter,
		string(e.FuelType),
		e.IsFullTank,
		e.Notes,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fuel entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: fuel entry %s", dto.ErrNotFound, e.ID)
	}
	return nil
}

func (r *FuelEntryRepository) DeleteFuelEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fuel_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fuel entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: fuel entry %s", dto.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFuelEntry(row rowScanner) (*dto.FuelEntry, error) {
	var (
		e                    dto.FuelEntry
		date, createdAt      string
		fuelType             string
		distance, efficiency sql.NullFloat64
	)
	err := row.Scan(&e.ID, &e.VehicleID, &date, &e.Odometer, &e.Liters, &e.TotalPrice, &e.PricePerLiter,
		&fuelType, &e.IsFullTank, &distance, &efficiency, &e.Notes, &e.ScanID, &createdAt)
	if err != nil {
		return nil, err
	}

	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.FuelType = dto.FuelType(fuelType)
	if distance.Valid {
		e.Distance = &distance.Float64
	}
	if efficiency.Valid {
		e.Efficiency = &efficiency.Float64
	}
	return &e, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
