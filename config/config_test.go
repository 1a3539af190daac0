package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OCR_ENGINE", "")
	t.Setenv("PRICE_PER_LITER_MIN", "")
	t.Setenv("STATION_PREFIXES", "")
	t.Setenv("TESSERACT_LANGUAGES", "")

	cfg := LoadConfig()

	assert.Equal(t, EngineTesseract, cfg.Engine)
	assert.Equal(t, 5000.0, cfg.Thresholds.MinPricePerLiter)
	assert.Equal(t, 25000.0, cfg.Thresholds.MaxPricePerLiter)
	assert.Equal(t, []string{"31", "34"}, cfg.StationPrefixes)
	assert.Equal(t, []string{"ind", "eng"}, cfg.TesseractLanguages)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OCR_ENGINE", "Gemini")
	t.Setenv("PRICE_PER_LITER_MIN", "6000")
	t.Setenv("TOTAL_PRICE_MIN", "10000")
	t.Setenv("STATION_PREFIXES", "31, 34,54")
	t.Setenv("TESSERACT_LANGUAGES", "ind+eng")
	t.Setenv("OCR_TIMEOUT", "15s")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, EngineGemini, cfg.Engine)
	assert.Equal(t, 6000.0, cfg.Thresholds.MinPricePerLiter)
	assert.Equal(t, 10000.0, cfg.Thresholds.MinTotalPrice)
	assert.Equal(t, []string{"31", "34", "54"}, cfg.StationPrefixes)
	assert.Equal(t, []string{"ind", "eng"}, cfg.TesseractLanguages)
	assert.Equal(t, 15*time.Second, cfg.EngineTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Engine = "magic"
	cfg.Thresholds.MinPricePerLiter = 30000
	cfg.EngineWeight = 2

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown OCR_ENGINE")
	assert.Contains(t, err.Error(), "price per liter band")
	assert.Contains(t, err.Error(), "OCR_ENGINE_WEIGHT")
}

func TestLocation(t *testing.T) {
	cfg := &Config{ReceiptTimezone: "WITA"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	_, offset := time.Date(2024, 5, 12, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*60*60, offset)

	cfg.ReceiptTimezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, (&Config{LogLevel: "DEBUG"}).ZerologLevel())
	assert.Equal(t, zerolog.InfoLevel, (&Config{LogLevel: "loud"}).ZerologLevel())
	assert.Equal(t, zerolog.InfoLevel, (&Config{}).ZerologLevel())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}

	prev := log.Logger
	cfg.SetupLogger(&buf)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	log.Info().Msg("hidden")
	log.Warn().Str("engine", "paddle").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"engine":"paddle"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
