package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiClient transcribes receipts with a Gemini multimodal model.
type GeminiClient struct {
	apiKey string
	model  string
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini engine: GEMINI_API_KEY: %w", ErrMissingCredential)
	}
	return &GeminiClient{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }

func (g *GeminiClient) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcriptionPrompt)},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Transcribe this receipt."),
		genai.Blob{MIMEType: http.DetectContentType(image), Data: image},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, ErrNoText
	}
	log.Debug().Str("engine", g.Name()).Str("model", g.model).Msg("gemini transcription received")

	return parseTranscription(txt)
}

func ptrFloat32(v float32) *float32 { return &v }

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
