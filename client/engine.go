package client

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when a hosted engine has no API key.
	ErrMissingCredential = errors.New("missing credential for recognition engine")
	// ErrNoText is returned when an engine read the image but found no text.
	ErrNoText = errors.New("recognition engine returned no text")
)

// Recognition is the raw output of an engine. Confidence is on a 0-100 scale
// and nil when the engine does not report one.
type Recognition struct {
	Text       string
	Confidence *float64
}

// RecognitionEngine converts a receipt image into text.
type RecognitionEngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
}

func confidence(v float64) *float64 {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}
