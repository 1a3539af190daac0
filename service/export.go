package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Fuel Entries"

// ExportXLSX renders a vehicle's fuel entries, or all entries when
// vehicleID is empty, as an XLSX workbook.
func (s *FuelEntryService) ExportXLSX(ctx context.Context, vehicleID string) ([]byte, error) {
	start := time.Now()

	entries, err := s.List(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query fuel entries: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(exportSheet); index == -1 {
		if _, err := f.NewSheet(exportSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(exportSheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Date",
		"Vehicle",
		"Fuel Type",
		"Odometer (km)",
		"Liters",
		"Price/Liter (Rp)",
		"Total (Rp)",
		"Full Tank",
		"Distance (km)",
		"Efficiency (km/L)",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, e := range entries {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}

		write(1, e.Date.Format("2006-01-02"))
		write(2, e.VehicleID)
		write(3, string(e.FuelType))
		write(4, e.Odometer)
		write(5, e.Liters)
		write(6, e.PricePerLiter)
		write(7, e.TotalPrice)
		write(8, e.IsFullTank)
		if e.Distance != nil {
			write(9, *e.Distance)
		}
		if e.Efficiency != nil {
			write(10, *e.Efficiency)
		}
		write(11, e.Notes)
	}

	_ = f.SetColWidth(exportSheet, "A", "C", 14)
	_ = f.SetColWidth(exportSheet, "D", "J", 16)
	_ = f.SetColWidth(exportSheet, "K", "K", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	log.Info().
		Str("vehicle_id", vehicleID).
		Int("rows", len(entries)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("fuel entries exported")

	return buf.Bytes(), nil
}
