package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/client/engines"
	"github.com/fueltrack/receipt-ocr/config"
	"github.com/fueltrack/receipt-ocr/handler"
	"github.com/fueltrack/receipt-ocr/repository"
	"github.com/fueltrack/receipt-ocr/service"
	"github.com/fueltrack/receipt-ocr/utils/fuelreceipt"
)

const shutdownTimeout = 15 * time.Second

// Run wires engines, storage and handlers from cfg and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	// Initialize recognition engine
	engine, err := engines.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s engine: %w", cfg.Engine, err)
	}

	// Initialize storage
	db, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
	}
	defer db.Close()

	// Initialize service layer
	receiptService := service.NewReceiptService(
		engine,
		fuelreceipt.NewParser(cfg.ParserConfig()),
		service.NewImagePreprocessor(engines.ImageSize(cfg)),
		service.NewPDFProcessor(),
		repository.NewScanRepository(db),
		cfg.EngineTimeout,
	)
	fuelEntryService := service.NewFuelEntryService(repository.NewFuelEntryRepository(db))

	// Initialize handler layer
	if cfg.ZerologLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(
		handler.NewReceiptHandler(receiptService, cfg.MaxFileSize),
		handler.NewFuelEntryHandler(fuelEntryService),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("engine", engine.Name()).Msg("starting fuel receipt OCR service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
