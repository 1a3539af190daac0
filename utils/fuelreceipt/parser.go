package fuelreceipt

import (
	"strings"
	"time"

	"github.com/fueltrack/receipt-ocr/dto"
)

// Thresholds are the plausibility bands applied by the detectors, in rupiah
// and liters.
type Thresholds struct {
	MinPricePerLiter         float64
	MaxPricePerLiter         float64
	FallbackMinPricePerLiter float64
	MinTotalPrice            float64
	MaxTotalPrice            float64
	MaxVolumeLiters          float64
}

// Config controls a Parser.
type Config struct {
	Thresholds      Thresholds
	StationPrefixes []string
	Location        *time.Location
	// EngineWeight is the share of the engine confidence in the final score.
	EngineWeight float64
}

// WIB is Western Indonesia Time, the zone printed on most SPBU receipts.
var WIB = time.FixedZone("WIB", 7*60*60)

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPricePerLiter:         5000,
		MaxPricePerLiter:         25000,
		FallbackMinPricePerLiter: 9000,
		MinTotalPrice:            5000,
		MaxTotalPrice:            10_000_000,
		MaxVolumeLiters:          1000,
	}
}

func DefaultConfig() Config {
	return Config{
		Thresholds:      DefaultThresholds(),
		StationPrefixes: []string{"31", "34"},
		Location:        WIB,
	}
}

// Parser turns recognized receipt text into structured data. It keeps no
// state between calls and is safe for concurrent use.
type Parser struct {
	cfg Config
}

func NewParser(cfg Config) *Parser {
	if cfg.Location == nil {
		cfg.Location = WIB
	}
	if len(cfg.StationPrefixes) == 0 {
		cfg.StationPrefixes = DefaultConfig().StationPrefixes
	}
	return &Parser{cfg: cfg}
}

// Parse runs normalization, detection, reconciliation and scoring over text.
// Missing fields are left unset; it never fails.
func (p *Parser) Parse(text string, engineConfidence *float64) dto.ExtractedReceiptData {
	e := Reconcile(p.Detect(text))

	result := dto.ExtractedReceiptData{
		VolumeLiters:     e.VolumeLiters,
		PricePerLiter:    e.PricePerLiter,
		TotalPrice:       e.TotalPrice,
		FuelType:         e.FuelType,
		TransactionDate:  e.TransactionDate,
		StationCode:      e.StationCode,
		Confidence:       Score(e, engineConfidence, p.cfg.EngineWeight),
		EngineConfidence: engineConfidence,
		Backfilled:       e.Backfilled,
		RawText:          text,
	}
	return result
}

// Detect runs every field detector over the normalized lines without
// reconciling. Text without any fuel evidence yields an empty Extraction.
func (p *Parser) Detect(text string) Extraction {
	lines := NormalizeText(text)
	full := strings.Join(lines, "\n")
	th := p.cfg.Thresholds

	var e Extraction
	if fuel, ok := detectFuelType(full); ok {
		e.FuelType = &fuel
	}

	labelledPrice := false
	for _, line := range lines {
		if e.VolumeLiters == nil {
			if v, ok := detectVolume(line, th.MaxVolumeLiters); ok {
				e.VolumeLiters = &v
			}
		}
		if e.PricePerLiter == nil {
			if v, ok := detectPricePerLiter(line, th.MinPricePerLiter, th.MaxPricePerLiter); ok {
				e.PricePerLiter = &v
				labelledPrice = isPerLiterLabel(line)
			}
		}
		if e.TransactionDate == nil {
			if t, ok := detectDate(line, p.cfg.Location); ok {
				e.TransactionDate = &t
			}
		}
		if e.StationCode == "" {
			if code, ok := detectStationCode(line, p.cfg.StationPrefixes); ok {
				e.StationCode = code
			}
		}
	}

	if e.FuelType == nil && e.VolumeLiters == nil && !labelledPrice && e.StationCode == "" {
		return Extraction{}
	}

	if e.PricePerLiter == nil && (e.FuelType != nil || e.VolumeLiters != nil) {
		for i, line := range lines {
			if containsAny(line, totalKeywords) || (i > 0 && isBareTotalLine(lines[i-1])) {
				continue
			}
			if _, ok := detectVolume(line, th.MaxVolumeLiters); ok {
				continue
			}
			if v, ok := firstMoneyInRange(line, th.FallbackMinPricePerLiter, th.MaxPricePerLiter); ok {
				e.PricePerLiter = &v
				break
			}
		}
	}

	if v, ok := detectTotal(lines, th.MinTotalPrice, th.MaxTotalPrice); ok {
		e.TotalPrice = &v
	}

	return e
}
