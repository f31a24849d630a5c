package service

import (
	"context"
	"strings"

	"invoice-parser/internal/domain"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOCR extracts text from page images via the gosseract client.
// OCR is best effort: any failure maps to an empty string and a logged
// diagnostic, never an error, so one bad page cannot abort its siblings.
type TesseractOCR struct {
	clientFactory func() *gosseract.Client
	logger        domain.Logger
}

// NewTesseractOCR creates a Tesseract-backed OCR engine
func NewTesseractOCR(logger domain.Logger) *TesseractOCR {
	return &TesseractOCR{
		clientFactory: gosseract.NewClient,
		logger:        logger,
	}
}

// Recognize runs OCR on one page image and returns the trimmed text.
// A fresh client per call keeps invocations independent; gosseract
// clients are not safe for concurrent reuse.
func (o *TesseractOCR) Recognize(ctx context.Context, imagePath string) string {
	select {
	case <-ctx.Done():
		o.logger.Warn("OCR skipped, context cancelled", "image", imagePath)
		return ""
	default:
	}

	client := o.clientFactory()
	defer client.Close()

	if err := client.SetImage(imagePath); err != nil {
		o.logger.Error("OCR failed to load image", err, "image", imagePath)
		return ""
	}

	text, err := client.Text()
	if err != nil {
		o.logger.Error("OCR recognition failed", err, "image", imagePath)
		return ""
	}

	return strings.TrimSpace(text)
}
