package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/rs/zerolog/log"
)

// AzureClient uses the Azure Computer Vision OCR API. It reports no
// confidence.
type AzureClient struct {
	client *computervision.BaseClient
}

func NewAzureClient(endpoint, apiKey string) (*AzureClient, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("azure engine: AZURE_VISION_ENDPOINT/AZURE_VISION_KEY: %w", ErrMissingCredential)
	}
	client := computervision.New(strings.TrimSpace(endpoint))
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(strings.TrimSpace(apiKey))
	return &AzureClient{client: &client}, nil
}

func (a *AzureClient) Name() string { return "azure" }

func (a *AzureClient) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(image)),
		computervision.OcrLanguagesUnk,
	)
	if err != nil {
		return nil, fmt.Errorf("azure OCR failed: %w", err)
	}

	text := ocrResultText(result)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}
	log.Debug().Str("engine", a.Name()).Int("chars", len(text)).Msg("azure recognized text")

	return &Recognition{Text: text}, nil
}

// ocrResultText joins the words of every line, one receipt line per output line.
func ocrResultText(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var sb strings.Builder
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			var words []string
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			if len(words) > 0 {
				sb.WriteString(strings.Join(words, " "))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
