package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueltrack/receipt-ocr/client"
	"github.com/fueltrack/receipt-ocr/dto"
	"github.com/fueltrack/receipt-ocr/utils/fuelreceipt"
)

const receiptText = `SPBU 34.12345
PERTAMAX
VOLUME: 6,667 L
HARGA/LITER RP 13.500
12/05/2024 14:32`

type fakeEngine struct {
	text  string
	conf  *float64
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, image []byte) (*client.Recognition, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &client.Recognition{Text: f.text, Confidence: f.conf}, nil
}

type fakePDF struct {
	text    string
	textErr error
	images  []image.Image
}

func (f *fakePDF) ExtractText(pdfData []byte) (string, error) { return f.text, f.textErr }

func (f *fakePDF) ExtractImages(pdfData []byte) ([]image.Image, error) { return f.images, nil }

type memoryScanStore struct {
	scans map[string]*dto.ReceiptScanResponse
}

func (m *memoryScanStore) SaveScan(ctx context.Context, scan *dto.ReceiptScanResponse) error {
	m.scans[scan.ScanID] = scan
	return nil
}

func (m *memoryScanStore) GetScan(ctx context.Context, id string) (*dto.ReceiptScanResponse, error) {
	if s, ok := m.scans[id]; ok {
		return s, nil
	}
	return nil, dto.ErrNotFound
}

func whiteImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(engine client.RecognitionEngine, pdf PDFProcessor, store ScanStore) *ReceiptService {
	return NewReceiptService(
		engine,
		fuelreceipt.NewParser(fuelreceipt.DefaultConfig()),
		NewImagePreprocessor(1600),
		pdf,
		store,
		5*time.Second,
	)
}

func TestExtractReceiptData(t *testing.T) {
	conf := 88.0
	engine := &fakeEngine{text: receiptText, conf: &conf}
	svc := newTestService(engine, &fakePDF{}, nil)

	data, err := svc.ExtractReceiptData(context.Background(), pngBytes(t, whiteImage(40, 40)))

	require.NoError(t, err)
	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, 90005.0, *data.TotalPrice)
	assert.Equal(t, []string{dto.FieldTotalPrice}, data.Backfilled)
	assert.Equal(t, 100, data.Confidence)
	assert.Equal(t, 88.0, *data.EngineConfidence)
	assert.Equal(t, 1, engine.calls)
}

func TestExtractReceiptDataPropagatesEngineError(t *testing.T) {
	engineErr := errors.New("engine exploded")
	svc := newTestService(&fakeEngine{err: engineErr}, &fakePDF{}, nil)

	data, err := svc.ExtractReceiptData(context.Background(), pngBytes(t, whiteImage(10, 10)))

	assert.Nil(t, data)
	assert.Same(t, engineErr, err)
}

func TestExtractReceiptDataMissingCredential(t *testing.T) {
	svc := newTestService(&fakeEngine{err: client.ErrMissingCredential}, &fakePDF{}, nil)

	_, err := svc.ExtractReceiptData(context.Background(), pngBytes(t, whiteImage(10, 10)))

	assert.ErrorIs(t, err, client.ErrMissingCredential)
}

func TestExtractReceiptDataUnreadableImage(t *testing.T) {
	engine := &fakeEngine{text: receiptText}
	svc := newTestService(engine, &fakePDF{}, nil)

	_, err := svc.ExtractReceiptData(context.Background(), []byte("definitely not an image"))

	assert.ErrorIs(t, err, dto.ErrUnreadableImage)
	assert.Equal(t, 0, engine.calls)
}

func TestScanImageWithQR(t *testing.T) {
	matrix, err := qrcode.NewQRCodeWriter().Encode("SPBU 34.12345 TRX 0001", gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)

	store := &memoryScanStore{scans: map[string]*dto.ReceiptScanResponse{}}
	svc := newTestService(&fakeEngine{text: receiptText}, &fakePDF{}, store)

	resp, err := svc.Scan(context.Background(), pngBytes(t, matrix), "image/png")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ScanID)
	assert.Equal(t, "fake", resp.Engine)
	assert.Equal(t, dto.SourceImage, resp.Source)
	assert.Equal(t, "SPBU 34.12345 TRX 0001", resp.QRPayload)
	assert.Equal(t, "34.12345", resp.Receipt.StationCode)

	stored, err := svc.GetScan(context.Background(), resp.ScanID)
	require.NoError(t, err)
	assert.Equal(t, resp, stored)
}

func TestScanPDFTextLayer(t *testing.T) {
	engine := &fakeEngine{text: "unused"}
	svc := newTestService(engine, &fakePDF{text: receiptText + "\nTOTAL RP 90.000"}, nil)

	resp, err := svc.Scan(context.Background(), []byte("%PDF-1.7"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, dto.SourcePDFText, resp.Source)
	assert.Equal(t, 90000.0, *resp.Receipt.TotalPrice)
	assert.Equal(t, 100.0, *resp.Receipt.EngineConfidence)
	assert.Equal(t, 0, engine.calls)
}

func TestScanPDFFallsBackToRecognition(t *testing.T) {
	conf := 70.0
	engine := &fakeEngine{text: receiptText, conf: &conf}
	pdf := &fakePDF{text: " ", images: []image.Image{whiteImage(30, 30)}}
	svc := newTestService(engine, pdf, nil)

	resp, err := svc.Scan(context.Background(), []byte("%PDF-1.7"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, dto.SourcePDFOCR, resp.Source)
	assert.Equal(t, "fake", resp.Engine)
	assert.Equal(t, 70.0, *resp.Receipt.EngineConfidence)
	assert.Equal(t, 1, engine.calls)
}

func TestScanPDFWithoutContent(t *testing.T) {
	svc := newTestService(&fakeEngine{text: receiptText}, &fakePDF{}, nil)

	_, err := svc.Scan(context.Background(), []byte("%PDF-1.7"), "application/pdf")

	assert.ErrorIs(t, err, dto.ErrUnreadableImage)
}

func TestGetScanWithoutStore(t *testing.T) {
	svc := newTestService(&fakeEngine{}, &fakePDF{}, nil)

	_, err := svc.GetScan(context.Background(), "5f0c7c6e-8a4b-4d8e-9a57-0f1c2b3d4e5f")

	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestGetScanRejectsMalformedID(t *testing.T) {
	svc := newTestService(&fakeEngine{}, &fakePDF{}, &memoryScanStore{scans: map[string]*dto.ReceiptScanResponse{}})

	_, err := svc.GetScan(context.Background(), "../etc/passwd")

	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestScanImageMatchesExtractReceiptData(t *testing.T) {
	conf := 72.0
	engine := &fakeEngine{text: receiptText, conf: &conf}
	svc := newTestService(engine, &fakePDF{}, nil)
	photo := pngBytes(t, whiteImage(40, 40))

	data, err := svc.ExtractReceiptData(context.Background(), photo)
	require.NoError(t, err)
	resp, err := svc.Scan(context.Background(), photo, "image/png")
	require.NoError(t, err)

	assert.Equal(t, *data, resp.Receipt)
	assert.Equal(t, dto.SourceImage, resp.Source)
	assert.Equal(t, 2, engine.calls)
}
