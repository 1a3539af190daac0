package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/dto"
)

// sendError sends a structured error response
func sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Warn().Err(err).Int("status", statusCode).Str("path", c.FullPath()).Msg(message)
	}

	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
