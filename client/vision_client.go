package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// VisionClient transcribes receipts with an OpenAI-compatible chat model
// that accepts image input (OpenAI, Groq).
type VisionClient struct {
	client *openai.Client
	model  string
}

func NewVisionClient(apiKey, baseURL, model string) (*VisionClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("vision engine: VISION_API_KEY: %w", ErrMissingCredential)
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &VisionClient{
		client: openai.NewClientWithConfig(cfg),
		model:  strings.TrimSpace(model),
	}, nil
}

func (v *VisionClient) Name() string { return "vision" }

func (v *VisionClient) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	dataURL := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0,
		MaxTokens:   2000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: transcriptionPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Transcribe this receipt."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoText
	}

	raw := resp.Choices[0].Message.Content
	log.Debug().Str("engine", v.Name()).Str("model", v.model).Int("tokens", resp.Usage.TotalTokens).Msg("vision transcription received")

	return parseTranscription(raw)
}
