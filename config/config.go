package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/fueltrack/receipt-ocr/utils/fuelreceipt"
)

// Recognition engines selectable through OCR_ENGINE.
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
	EngineVision    = "vision"
	EngineGemini    = "gemini"
	EngineAzure     = "azure"
)

var knownEngines = []string{EngineTesseract, EnginePaddle, EngineVision, EngineGemini, EngineAzure}

type Config struct {
	ServerPort  string
	MaxFileSize int64
	LogLevel    string
	LogFormat   string
	DBPath      string

	Engine          string
	EngineTimeout   time.Duration
	EngineWeight    float64
	MaxImageSize    int
	HostedImageSize int

	TesseractDataPath  string
	TesseractLanguages []string

	PaddleAPIURL string

	VisionAPIKey  string
	VisionBaseURL string
	VisionModel   string

	GeminiAPIKey string
	GeminiModel  string

	AzureEndpoint string
	AzureKey      string

	Thresholds      fuelreceipt.Thresholds
	StationPrefixes []string
	ReceiptTimezone string
}

// LoadConfig reads the environment, after an optional .env file.
func LoadConfig() *Config {
	_ = godotenv.Load()

	th := fuelreceipt.DefaultThresholds()
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 10*1024*1024), // 10 MB
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		DBPath:      getEnv("DB_PATH", "fuelscan.db"),

		Engine:          strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
		EngineTimeout:   getEnvDuration("OCR_TIMEOUT", 60*time.Second),
		EngineWeight:    getEnvFloat("OCR_ENGINE_WEIGHT", 0),
		MaxImageSize:    getEnvInt("MAX_IMAGE_SIZE", 1600),
		HostedImageSize: getEnvInt("HOSTED_IMAGE_SIZE", 800),

		TesseractDataPath:  getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		TesseractLanguages: getEnvList("TESSERACT_LANGUAGES", []string{"ind", "eng"}),

		PaddleAPIURL: getEnv("PADDLEOCR_API_URL", "http://paddleocr:8866/predict/ocr_system"),

		VisionAPIKey:  getEnv("VISION_API_KEY", ""),
		VisionBaseURL: getEnv("VISION_BASE_URL", "https://api.groq.com/openai/v1"),
		VisionModel:   getEnv("VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		AzureEndpoint: getEnv("AZURE_VISION_ENDPOINT", ""),
		AzureKey:      getEnv("AZURE_VISION_KEY", ""),

		Thresholds: fuelreceipt.Thresholds{
			MinPricePerLiter:         getEnvFloat("PRICE_PER_LITER_MIN", th.MinPricePerLiter),
			MaxPricePerLiter:         getEnvFloat("PRICE_PER_LITER_MAX", th.MaxPricePerLiter),
			FallbackMinPricePerLiter: getEnvFloat("PRICE_PER_LITER_FALLBACK_MIN", th.FallbackMinPricePerLiter),
			MinTotalPrice:            getEnvFloat("TOTAL_PRICE_MIN", th.MinTotalPrice),
			MaxTotalPrice:            getEnvFloat("TOTAL_PRICE_MAX", th.MaxTotalPrice),
			MaxVolumeLiters:          getEnvFloat("VOLUME_MAX_LITERS", th.MaxVolumeLiters),
		},
		StationPrefixes: getEnvList("STATION_PREFIXES", []string{"31", "34"}),
		ReceiptTimezone: getEnv("RECEIPT_TIMEZONE", "WIB"),
	}
}

// Validate rejects settings the parser or engine selection cannot work with.
func (c *Config) Validate() error {
	var errs []error

	known := false
	for _, e := range knownEngines {
		if c.Engine == e {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown OCR_ENGINE %q (want one of %s)", c.Engine, strings.Join(knownEngines, ", ")))
	}

	th := c.Thresholds
	if th.MinPricePerLiter <= 0 || th.MinPricePerLiter > th.MaxPricePerLiter {
		errs = append(errs, fmt.Errorf("invalid price per liter band %.0f-%.0f", th.MinPricePerLiter, th.MaxPricePerLiter))
	}
	if th.FallbackMinPricePerLiter < th.MinPricePerLiter || th.FallbackMinPricePerLiter > th.MaxPricePerLiter {
		errs = append(errs, fmt.Errorf("fallback price per liter floor %.0f outside %.0f-%.0f",
			th.FallbackMinPricePerLiter, th.MinPricePerLiter, th.MaxPricePerLiter))
	}
	if th.MinTotalPrice <= 0 || th.MinTotalPrice > th.MaxTotalPrice {
		errs = append(errs, fmt.Errorf("invalid total price band %.0f-%.0f", th.MinTotalPrice, th.MaxTotalPrice))
	}
	if th.MaxVolumeLiters <= 0 {
		errs = append(errs, errors.New("VOLUME_MAX_LITERS must be positive"))
	}
	if c.EngineWeight < 0 || c.EngineWeight > 1 {
		errs = append(errs, fmt.Errorf("OCR_ENGINE_WEIGHT %.2f outside [0,1]", c.EngineWeight))
	}
	if c.MaxImageSize <= 0 || c.HostedImageSize <= 0 {
		errs = append(errs, errors.New("image sizes must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves RECEIPT_TIMEZONE. The Indonesian abbreviations WIB, WITA
// and WIT map to fixed offsets; anything else is an IANA zone name.
func (c *Config) Location() (*time.Location, error) {
	switch strings.ToUpper(c.ReceiptTimezone) {
	case "", "WIB":
		return fuelreceipt.WIB, nil
	case "WITA":
		return time.FixedZone("WITA", 8*60*60), nil
	case "WIT":
		return time.FixedZone("WIT", 9*60*60), nil
	}
	loc, err := time.LoadLocation(c.ReceiptTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid RECEIPT_TIMEZONE %q: %w", c.ReceiptTimezone, err)
	}
	return loc, nil
}

// ParserConfig builds the receipt parser settings.
func (c *Config) ParserConfig() fuelreceipt.Config {
	loc, err := c.Location()
	if err != nil {
		loc = fuelreceipt.WIB
	}
	return fuelreceipt.Config{
		Thresholds:      c.Thresholds,
		StationPrefixes: c.StationPrefixes,
		Location:        loc,
		EngineWeight:    c.EngineWeight,
	}
}

// ZerologLevel parses LogLevel, defaulting to info.
func (c *Config) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '+' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
