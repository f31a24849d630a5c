package service

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoice-parser/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer turns an uploaded document into an ordered list of page
// images. Image uploads pass through untouched; PDFs are rendered with
// go-fitz, one PNG per page, written next to the source file.
type Rasterizer struct {
	logger domain.Logger
}

// NewRasterizer creates a new rasterizer
func NewRasterizer(logger domain.Logger) *Rasterizer {
	return &Rasterizer{logger: logger}
}

// Rasterize produces the ordered page sequence for a document. A document
// that yields no pages is an error; an empty slice is never a valid
// success.
func (r *Rasterizer) Rasterize(ctx context.Context, filePath string, mediaType domain.MediaType) ([]domain.Page, error) {
	if mediaType.IsImage() {
		// Single-page document, the page IS the original file.
		return []domain.Page{{Index: 0, ImagePath: filePath}}, nil
	}
	if mediaType != domain.MediaTypePDF {
		return nil, domain.ErrUnsupportedMedia
	}

	start := time.Now()
	pages, err := r.renderPDF(ctx, filePath)
	if err != nil {
		r.logger.Error("PDF rasterization failed", err, "file", filePath)
		return nil, fmt.Errorf("%w: %v", domain.ErrNoPages, err)
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoPages
	}

	r.logger.Info("Converted PDF to images",
		"file", filepath.Base(filePath),
		"pages", len(pages),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return pages, nil
}

func (r *Rasterizer) renderPDF(ctx context.Context, pdfPath string) ([]domain.Page, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]domain.Page, 0, numPages)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNum, err)
		}

		outputPath := pageImagePath(pdfPath, pageNum)
		out, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create image for page %d: %w", pageNum, err)
		}
		err = png.Encode(out, img)
		out.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", pageNum, err)
		}

		pages = append(pages, domain.Page{Index: pageNum, ImagePath: outputPath})
	}

	return pages, nil
}

// pageImagePath names a rendered page after the source stem and the
// zero-based page index, sibling to the source file.
func pageImagePath(pdfPath string, index int) string {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	return fmt.Sprintf("%s_%d.png", stem, index)
}
