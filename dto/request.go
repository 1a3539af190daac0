package dto

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var supportedReceiptExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ReceiptExtractRequest represents an uploaded receipt photo or e-receipt PDF
type ReceiptExtractRequest struct {
	File    *multipart.FileHeader
	MaxSize int64
}

// Validate validates the receipt upload
func (r *ReceiptExtractRequest) Validate() error {
	if r.File == nil {
		return fmt.Errorf("%w: file is required", ErrInvalidFile)
	}

	if _, ok := supportedReceiptExtensions[strings.ToLower(filepath.Ext(r.File.Filename))]; !ok {
		return fmt.Errorf("%w: unsupported file type, supported: PDF, PNG, JPG", ErrInvalidFile)
	}

	if r.MaxSize > 0 && r.File.Size > r.MaxSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidFile, r.MaxSize)
	}

	return nil
}

// MimeType is taken from the validated extension. The declared part
// Content-Type is client input and may disagree with the file.
func (r *ReceiptExtractRequest) MimeType() string {
	return InferMimeType(r.File.Filename)
}

// InferMimeType infers MIME type from file extension
func InferMimeType(filename string) string {
	return supportedReceiptExtensions[strings.ToLower(filepath.Ext(filename))]
}
