package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// transcriptionPrompt asks a vision model to copy the receipt verbatim; the
// receipt parser does the field extraction.
const transcriptionPrompt = `You are an OCR engine for Indonesian fuel station (SPBU) receipts.
Transcribe every line of text on the receipt exactly as printed, top to bottom, one receipt line per output line.
Do not translate, summarize, reformat numbers or fix spelling.
Respond with ONLY a JSON object: {"text": "<transcribed lines separated by \n>", "confidence": <0-100, how legible the receipt is>}.
If the image is not a receipt or is unreadable, respond {"text": "", "confidence": 0}.`

const transcriptionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var compiledTranscriptionSchema = jsonschema.MustCompileString("transcription.schema.json", transcriptionSchema)

type transcription struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// parseTranscription validates a model reply against the transcription
// schema and turns it into a Recognition.
func parseTranscription(raw string) (*Recognition, error) {
	content := stripCodeFences(raw)
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("invalid transcription JSON: %w", err)
	}
	if err := compiledTranscriptionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("transcription does not match schema: %w", err)
	}

	var t transcription
	if err := json.Unmarshal([]byte(content), &t); err != nil {
		return nil, fmt.Errorf("invalid transcription JSON: %w", err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, ErrNoText
	}

	rec := &Recognition{Text: t.Text}
	if t.Confidence != nil {
		rec.Confidence = confidence(*t.Confidence)
	}
	return rec, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
