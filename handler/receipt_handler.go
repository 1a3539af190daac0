package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/service"
)

type ReceiptHandler struct {
	receiptService *service.ReceiptService
	maxFileSize    int64
}

func NewReceiptHandler(receiptService *service.ReceiptService, maxFileSize int64) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		maxFileSize:    maxFileSize,
	}
}

// ExtractReceipt handles POST /receipts/extract with a multipart "file".
func (h *ReceiptHandler) ExtractReceipt(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "file is required", err)
		return
	}

	request := &dto.ReceiptExtractRequest{File: fileHeader, MaxSize: h.maxFileSize}
	if err := request.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid receipt upload", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "failed to open file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "failed to read file", err)
		return
	}

	log.Info().Str("filename", fileHeader.Filename).Int64("size", fileHeader.Size).Msg("receipt upload received")

	response, err := h.receiptService.Scan(c.Request.Context(), data, request.MimeType())
	if err != nil {
		// the user should retake the photo; details stay in the message
		sendError(c, http.StatusUnprocessableEntity, dto.CodeCannotReadImage, "cannot read receipt", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ParseText handles POST /receipts/parse for text recognized client side.
func (h *ReceiptHandler) ParseText(c *gin.Context) {
	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid parse request", err)
		return
	}

	c.JSON(http.StatusOK, h.receiptService.ParseText(req.Text, req.EngineConfidence))
}

// GetScan handles GET /receipts/scans/:id
func (h *ReceiptHandler) GetScan(c *gin.Context) {
	scan, err := h.receiptService.GetScan(c.Request.Context(), c.Param("id"))
	if errors.Is(err, dto.ErrNotFound) {
		sendError(c, http.StatusNotFound, dto.CodeNotFound, "scan not found", err)
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, dto.CodeInternal, "failed to load scan", err)
		return
	}

	c.JSON(http.StatusOK, scan)
}
