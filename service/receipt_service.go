package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/client"
	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/utils/fuelreceipt"
)

// minPDFTextLength is the shortest text layer treated as a real e-receipt;
// anything shorter is a scan and goes through recognition.
const minPDFTextLength = 20

// ScanStore keeps an audit trail of receipt scans.
type ScanStore interface {
	SaveScan(ctx context.Context, scan *dto.ReceiptScanResponse) error
	GetScan(ctx context.Context, id string) (*dto.ReceiptScanResponse, error)
}

type ReceiptService struct {
	engine       client.RecognitionEngine
	parser       *fuelreceipt.Parser
	preprocessor *ImagePreprocessor
	qrReader     *QRReader
	pdfProcessor PDFProcessor
	store        ScanStore
	timeout      time.Duration
}

// NewReceiptService wires the pipeline. store may be nil, in which case
// scans are not persisted.
func NewReceiptService(
	engine client.RecognitionEngine,
	parser *fuelreceipt.Parser,
	preprocessor *ImagePreprocessor,
	pdfProcessor PDFProcessor,
	store ScanStore,
	timeout time.Duration,
) *ReceiptService {
	return &ReceiptService{
		engine:       engine,
		parser:       parser,
		preprocessor: preprocessor,
		qrReader:     NewQRReader(),
		pdfProcessor: pdfProcessor,
		store:        store,
		timeout:      timeout,
	}
}

// EngineName reports the configured recognition engine.
func (s *ReceiptService) EngineName() string {
	return s.engine.Name()
}

// ExtractReceiptData recognizes a receipt photo and parses it. Errors from
// the recognition engine are returned as is; once text is obtained the call
// always succeeds.
func (s *ReceiptService) ExtractReceiptData(ctx context.Context, imageData []byte) (*dto.ExtractedReceiptData, error) {
	data, _, err := s.extract(ctx, imageData)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// extract is ExtractReceiptData that also hands back the decoded photo.
func (s *ReceiptService) extract(ctx context.Context, imageData []byte) (*dto.ExtractedReceiptData, image.Image, error) {
	prepared, original, err := s.preprocessor.Process(imageData)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.recognize(ctx, prepared)
	if err != nil {
		return nil, nil, err
	}

	data := s.parser.Parse(rec.Text, rec.Confidence)
	return &data, original, nil
}

// ParseText runs the parser over text recognized elsewhere.
func (s *ReceiptService) ParseText(text string, engineConfidence *float64) dto.ExtractedReceiptData {
	return s.parser.Parse(text, engineConfidence)
}

// Scan handles an uploaded receipt, photo or PDF, and records the result.
func (s *ReceiptService) Scan(ctx context.Context, fileData []byte, mimeType string) (*dto.ReceiptScanResponse, error) {
	var (
		resp *dto.ReceiptScanResponse
		err  error
	)
	if mimeType == "application/pdf" {
		resp, err = s.scanPDF(ctx, fileData)
	} else {
		resp, err = s.scanImage(ctx, fileData)
	}
	if err != nil {
		return nil, err
	}

	resp.ScanID = uuid.NewString()
	resp.ProcessedAt = time.Now().UTC().Format(time.RFC3339)

	log.Info().
		Str("scan_id", resp.ScanID).
		Str("engine", resp.Engine).
		Str("source", resp.Source).
		Int("confidence", resp.Receipt.Confidence).
		Strs("backfilled", resp.Receipt.Backfilled).
		Msg("receipt scanned")

	if s.store != nil {
		if err := s.store.SaveScan(ctx, resp); err != nil {
			log.Error().Err(err).Str("scan_id", resp.ScanID).Msg("failed to save receipt scan")
		}
	}

	return resp, nil
}

// GetScan returns a stored scan or dto.ErrNotFound.
func (s *ReceiptService) GetScan(ctx context.Context, id string) (*dto.ReceiptScanResponse, error) {
	if s.store == nil {
		return nil, dto.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: scan %q", dto.ErrNotFound, id)
	}
	return s.store.GetScan(ctx, id)
}

func (s *ReceiptService) scanImage(ctx context.Context, fileData []byte) (*dto.ReceiptScanResponse, error) {
	data, original, err := s.extract(ctx, fileData)
	if err != nil {
		return nil, err
	}

	qrPayload, _ := s.qrReader.Read(original)

	return &dto.ReceiptScanResponse{
		Engine:    s.engine.Name(),
		Source:    dto.SourceImage,
		Receipt:   *data,
		QRPayload: qrPayload,
	}, nil
}

func (s *ReceiptService) scanPDF(ctx context.Context, fileData []byte) (*dto.ReceiptScanResponse, error) {
	text, err := s.pdfProcessor.ExtractText(fileData)
	if err != nil {
		log.Warn().Err(err).Msg("pdf text layer unavailable, falling back to recognition")
	}

	if len(strings.TrimSpace(text)) >= minPDFTextLength {
		full := 100.0
		return &dto.ReceiptScanResponse{
			Engine:  "pdf",
			Source:  dto.SourcePDFText,
			Receipt: s.parser.Parse(text, &full),
		}, nil
	}

	images, err := s.pdfProcessor.ExtractImages(fileData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrUnreadableImage, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: pdf has neither text nor images", dto.ErrUnreadableImage)
	}

	var (
		texts     []string
		confSum   float64
		confCount int
		qrPayload string
	)
	for i, img := range images {
		if qrPayload == "" {
			qrPayload, _ = s.qrReader.Read(img)
		}

		prepared, err := s.preprocessor.Enhance(img)
		if err != nil {
			return nil, err
		}
		rec, err := s.recognize(ctx, prepared)
		if errors.Is(err, client.ErrNoText) {
			log.Debug().Int("image", i).Msg("no text on pdf image")
			continue
		}
		if err != nil {
			return nil, err
		}

		texts = append(texts, rec.Text)
		if rec.Confidence != nil {
			confSum += *rec.Confidence
			confCount++
		}
	}
	if len(texts) == 0 {
		return nil, client.ErrNoText
	}

	var engineConf *float64
	if confCount > 0 {
		mean := confSum / float64(confCount)
		engineConf = &mean
	}

	return &dto.ReceiptScanResponse{
		Engine:    s.engine.Name(),
		Source:    dto.SourcePDFOCR,
		Receipt:   s.parser.Parse(strings.Join(texts, "\n"), engineConf),
		QRPayload: qrPayload,
	}, nil
}

func (s *ReceiptService) recognize(ctx context.Context, imageData []byte) (*client.Recognition, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	rec, err := s.engine.Recognize(ctx, imageData)
	if err != nil {
		log.Warn().Err(err).Str("engine", s.engine.Name()).Msg("recognition failed")
		return nil, err
	}
	log.Debug().
		Str("engine", s.engine.Name()).
		Dur("took", time.Since(start)).
		Int("chars", len(rec.Text)).
		Msg("recognition finished")
	return rec, nil
}
