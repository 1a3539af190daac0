package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fueltrack/receipt-ocr/client/engines"
	"github.com/fueltrack/receipt-ocr/config"
	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/server"
	"github.com/fueltrack/receipt-ocr/service"
	"github.com/fueltrack/receipt-ocr/utils/fuelreceipt"
)

// ParseCmd parses recognized receipt text from a file or stdin.
func ParseCmd() *cobra.Command {
	var (
		asJSON           bool
		engineConfidence float64
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse recognized receipt text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			cfg.SetupLogger(cmd.ErrOrStderr())
			if err := cfg.Validate(); err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			text, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("failed to read text: %w", err)
			}

			var conf *float64
			if cmd.Flags().Changed("engine-confidence") {
				conf = &engineConfidence
			}
			data := fuelreceipt.NewParser(cfg.ParserConfig()).Parse(string(text), conf)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			printReceipt(cmd.OutOrStdout(), data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().Float64Var(&engineConfidence, "engine-confidence", 0, "confidence reported by the OCR engine (0-100)")
	return cmd
}

// ScanCmd runs a receipt image or PDF through the configured engine.
func ScanCmd() *cobra.Command {
	var (
		asJSON  bool
		engine  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan <image|pdf>",
		Short: "Recognize and parse a receipt photo or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if engine != "" {
				cfg.Engine = strings.ToLower(engine)
			}
			if timeout > 0 {
				cfg.EngineTimeout = timeout
			}
			cfg.SetupLogger(cmd.ErrOrStderr())
			if err := cfg.Validate(); err != nil {
				return err
			}

			mimeType := dto.InferMimeType(args[0])
			if mimeType == "" {
				return fmt.Errorf("%w: %s (supported: PDF, PNG, JPG)", dto.ErrInvalidFile, args[0])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			recognizer, err := engines.New(cfg)
			if err != nil {
				return err
			}
			svc := service.NewReceiptService(
				recognizer,
				fuelreceipt.NewParser(cfg.ParserConfig()),
				service.NewImagePreprocessor(engines.ImageSize(cfg)),
				service.NewPDFProcessor(),
				nil,
				cfg.EngineTimeout,
			)

			resp, err := svc.Scan(cmd.Context(), data, mimeType)
			if err != nil {
				return fmt.Errorf("cannot read receipt: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", color.New(color.FgCyan).Sprint("Engine:"), resp.Engine, resp.Source)
			if resp.QRPayload != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgCyan).Sprint("QR:"), resp.QRPayload)
			}
			printReceipt(cmd.OutOrStdout(), resp.Receipt)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&engine, "engine", "", "override OCR_ENGINE (tesseract, paddle, vision, gemini, azure)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "override OCR_TIMEOUT")
	return cmd
}

// ServeCmd starts the HTTP service, the same as the server binary.
func ServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if port != "" {
				cfg.ServerPort = port
			}
			cfg.SetupLogger(cmd.ErrOrStderr())
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "override SERVER_PORT")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
