package service

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/fueltrack/receipt-ocr/dto"
)

// ImagePreprocessor prepares receipt photos for recognition: downscale to
// maxSize on the longest side, grayscale, contrast and sharpen.
type ImagePreprocessor struct {
	maxSize int
}

func NewImagePreprocessor(maxSize int) *ImagePreprocessor {
	if maxSize <= 0 {
		maxSize = 1600
	}
	return &ImagePreprocessor{maxSize: maxSize}
}

// Decode reads PNG or JPEG bytes, honoring EXIF orientation of phone photos.
func (p *ImagePreprocessor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrUnreadableImage, err)
	}
	return img, nil
}

// Enhance returns the image re-encoded as JPEG after enhancement.
func (p *ImagePreprocessor) Enhance(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > p.maxSize || b.Dy() > p.maxSize {
		img = imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)
	}

	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	out = imaging.Sharpen(out, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Process decodes and enhances in one step. The decoded image is returned
// too so callers can look for a QR code in the original resolution.
func (p *ImagePreprocessor) Process(data []byte) ([]byte, image.Image, error) {
	img, err := p.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	out, err := p.Enhance(img)
	if err != nil {
		return nil, nil, err
	}
	return out, img, nil
}
