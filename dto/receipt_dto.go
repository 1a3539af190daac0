package dto

import (
	"strings"
	"time"
)

// FuelType is the closed set of fuel grades sold at SPBU stations.
type FuelType string

const (
	FuelPertamax      FuelType = "pertamax"
	FuelPertamaxTurbo FuelType = "pertamax-turbo"
	FuelPertalite     FuelType = "pertalite"
	FuelSolar         FuelType = "solar"
	FuelDexlite       FuelType = "dexlite"
)

// FuelTypes lists every supported grade.
var FuelTypes = []FuelType{FuelPertamax, FuelPertamaxTurbo, FuelPertalite, FuelSolar, FuelDexlite}

// Valid reports whether f is one of the known grades.
func (f FuelType) Valid() bool {
	for _, known := range FuelTypes {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFuelType accepts the canonical slug in any case.
func ParseFuelType(s string) (FuelType, bool) {
	f := FuelType(strings.ToLower(strings.TrimSpace(s)))
	return f, f.Valid()
}

// Field names used in ExtractedReceiptData.Backfilled
const (
	FieldTotalPrice    = "total_price"
	FieldPricePerLiter = "price_per_liter"
)

// ExtractedReceiptData is the structured result of reading one fuel receipt.
// Absent fields mean "not detected"; Confidence is always set.
type ExtractedReceiptData struct {
	VolumeLiters     *float64   `json:"volume_liters,omitempty"`
	PricePerLiter    *float64   `json:"price_per_liter,omitempty"`
	TotalPrice       *float64   `json:"total_price,omitempty"`
	FuelType         *FuelType  `json:"fuel_type,omitempty"`
	TransactionDate  *time.Time `json:"transaction_date,omitempty"`
	StationCode      string     `json:"station_code,omitempty"`
	Confidence       int        `json:"confidence"`
	EngineConfidence *float64   `json:"engine_confidence,omitempty"`
	Backfilled       []string   `json:"backfilled,omitempty"`
	RawText          string     `json:"raw_text,omitempty"`
}

// Scan sources
const (
	SourceImage   = "image"
	SourcePDFText = "pdf-text"
	SourcePDFOCR  = "pdf-ocr"
)

// ReceiptScanResponse is returned by POST /receipts/extract and GET /receipts/scans/:id
type ReceiptScanResponse struct {
	ScanID      string               `json:"scan_id"`
	Engine      string               `json:"engine"`
	Source      string               `json:"source"`
	Receipt     ExtractedReceiptData `json:"receipt"`
	QRPayload   string               `json:"qr_payload,omitempty"`
	ProcessedAt string               `json:"processed_at"`
}

// ParseTextRequest feeds already-recognized text straight into the parser.
type ParseTextRequest struct {
	Text             string   `json:"text" binding:"required"`
	EngineConfidence *float64 `json:"engine_confidence" binding:"omitempty,gte=0,lte=100"`
}
