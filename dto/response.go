package dto

import "errors"

// Custom errors
var (
	ErrUnreadableImage = errors.New("cannot read image")
	ErrInvalidFile     = errors.New("invalid file")
	ErrInvalidEntry    = errors.New("invalid fuel entry")
	ErrNotFound        = errors.New("not found")
)

// Error codes returned in ErrorResponse.Error
const (
	CodeCannotReadImage = "CANNOT_READ_IMAGE"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
