// Package tesseract wraps the local Tesseract engine. It needs cgo and the
// tesseract/leptonica libraries, so it lives apart from the HTTP engines.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/client"
)

type TesseractClient struct {
	dataPath  string
	languages []string
}

func NewTesseractClient(dataPath string, languages ...string) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"ind", "eng"}
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
	}
}

func (tc *TesseractClient) Name() string { return "tesseract" }

// Recognize runs Tesseract over the image bytes. The confidence is the mean
// word confidence reported by the engine.
func (tc *TesseractClient) Recognize(ctx context.Context, image []byte) (*client.Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gc := gosseract.NewClient()
	defer gc.Close()

	if tc.dataPath != "" {
		if err := gc.SetTessdataPrefix(tc.dataPath); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := gc.SetLanguage(tc.languages...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := gc.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := gc.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, client.ErrNoText
	}

	rec := &client.Recognition{Text: text}

	boxes, err := gc.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		log.Warn().Err(err).Msg("tesseract bounding boxes unavailable, confidence unknown")
		return rec, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	if len(boxes) > 0 {
		avg := totalConf / float64(len(boxes))
		rec.Confidence = &avg
	}

	return rec, nil
}
