package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NewRouter registers every route of the service.
func NewRouter(receiptHandler *ReceiptHandler, fuelEntryHandler *FuelEntryHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Fuel Receipt OCR",
			"engine":  receiptHandler.receiptService.EngineName(),
		})
	})

	api := router.Group("/api/v1")
	{
		receipts := api.Group("/receipts")
		{
			receipts.POST("/extract", receiptHandler.ExtractReceipt)
			receipts.POST("/parse", receiptHandler.ParseText)
			receipts.GET("/scans/:id", receiptHandler.GetScan)
		}

		entries := api.Group("/fuel-entries")
		{
			entries.POST("", fuelEntryHandler.CreateEntry)
			entries.GET("", fuelEntryHandler.ListEntries)
			entries.GET("/export", fuelEntryHandler.ExportEntries)
			entries.GET("/:id", fuelEntryHandler.GetEntry)
			entries.PUT("/:id", fuelEntryHandler.UpdateEntry)
			entries.DELETE("/:id", fuelEntryHandler.DeleteEntry)
		}

		api.GET("/vehicles/:id/stats", fuelEntryHandler.VehicleStats)
	}

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
