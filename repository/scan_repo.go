package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fueltrack/receipt-ocr/dto"
)

// ScanRepository stores the outcome of every receipt scan.
type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) SaveScan(ctx context.Context, scan *dto.ReceiptScanResponse) error {
	receiptJSON, err := json.Marshal(scan.Receipt)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO receipt_scans (id, engine, source, confidence, qr_payload, receipt_json, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scan.ScanID,
		scan.Engine,
		scan.Source,
		scan.Receipt.Confidence,
		scan.QRPayload,
		string(receiptJSON),
		scan.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}

func (r *ScanRepository) GetScan(ctx context.Context, id string) (*dto.ReceiptScanResponse, error) {
	var (
		scan        dto.ReceiptScanResponse
		receiptJSON string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, engine, source, qr_payload, receipt_json, processed_at FROM receipt_scans WHERE id = ?`,
		id,
	).Scan(&scan.ScanID, &scan.Engine, &scan.Source, &scan.QRPayload, &receiptJSON, &scan.ProcessedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scan %s", dto.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	if err := json.Unmarshal([]byte(receiptJSON), &scan.Receipt); err != nil {
		return nil, fmt.Errorf("failed to decode stored receipt: %w", err)
	}
	return &scan, nil
}
