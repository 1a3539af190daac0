package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PaddleClient calls a PaddleOCR serving endpoint (ocr_system) over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

func NewPaddleClient(apiURL string, timeout time.Duration) *PaddleClient {
	if apiURL == "" {
		apiURL = "http://paddleocr:8866/predict/ocr_system"
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *PaddleClient) Name() string { return "paddle" }

// Recognize sends the image base64 encoded and joins the returned lines. The
// confidence is the mean line score scaled to 0-100.
func (p *PaddleClient) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(image)},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var textBuilder strings.Builder
	var totalConf float64
	var count int
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			if strings.TrimSpace(line.Text) == "" {
				continue
			}
			textBuilder.WriteString(line.Text)
			textBuilder.WriteString("\n")
			totalConf += line.Confidence
			count++
		}
	}

	if count == 0 {
		return nil, ErrNoText
	}

	text := textBuilder.String()
	log.Debug().Int("chars", len(text)).Int("lines", count).Msg("paddleocr recognized text")

	return &Recognition{
		Text:       text,
		Confidence: confidence(totalConf / float64(count) * 100),
	}, nil
}
