// Package engines picks the recognition engine named by configuration.
package engines

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/client"
	"github.com/fueltrack/receipt-ocr/client/tesseract"
	"github.com/fueltrack/receipt-ocr/config"
)

// New builds the engine selected by cfg.Engine. Hosted engines without
// credentials fail with client.ErrMissingCredential.
func New(cfg *config.Config) (client.RecognitionEngine, error) {
	var (
		engine client.RecognitionEngine
		err    error
	)

	switch cfg.Engine {
	case config.EngineTesseract:
		engine = tesseract.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguages...)
	case config.EnginePaddle:
		engine = client.NewPaddleClient(cfg.PaddleAPIURL, cfg.EngineTimeout)
	case config.EngineVision:
		engine, err = client.NewVisionClient(cfg.VisionAPIKey, cfg.VisionBaseURL, cfg.VisionModel)
	case config.EngineGemini:
		engine, err = client.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.EngineAzure:
		engine, err = client.NewAzureClient(cfg.AzureEndpoint, cfg.AzureKey)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("engine", engine.Name()).Msg("recognition engine ready")
	return engine, nil
}

// ImageSize is the longest image side sent to the engine. Hosted engines get
// smaller uploads.
func ImageSize(cfg *config.Config) int {
	switch cfg.Engine {
	case config.EngineVision, config.EngineGemini, config.EngineAzure:
		return cfg.HostedImageSize
	default:
		return cfg.MaxImageSize
	}
}
