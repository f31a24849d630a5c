package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"invoice-parser/internal/domain"

	apperrors "invoice-parser/pkg/errors"
)

// PipelineService drives the full extraction pipeline for one uploaded
// document: rasterize, OCR all pages through the coordinator, then
// structure page by page. Only rasterization failure aborts the document;
// OCR and structuring failures are recorded in that page's result.
type PipelineService struct {
	rasterizer  domain.Rasterizer
	coordinator domain.OCRCoordinator
	structurer  domain.Structurer
	config      domain.Config
	logger      domain.Logger
}

// NewPipelineService creates a new pipeline orchestrator
func NewPipelineService(
	rasterizer domain.Rasterizer,
	coordinator domain.OCRCoordinator,
	structurer domain.Structurer,
	config domain.Config,
	logger domain.Logger,
) *PipelineService {
	return &PipelineService{
		rasterizer:  rasterizer,
		coordinator: coordinator,
		structurer:  structurer,
		config:      config,
		logger:      logger,
	}
}

// Process returns one PageResult per page, in page order. The result list
// is never shorter than the page list: per-page failures populate the
// error or fallback variant instead of dropping the page.
func (s *PipelineService) Process(ctx context.Context, doc *domain.Document) (*domain.UploadResult, error) {
	rasterStart := time.Now()
	pages, err := s.rasterizer.Rasterize(ctx, doc.FilePath, doc.MediaType)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to process the file", err)
	}
	rasterTime := time.Since(rasterStart)

	ocrStart := time.Now()
	texts := s.coordinator.RecognizeAll(ctx, pages)
	ocrTime := time.Since(ocrStart)
	s.logger.Info("OCR phase finished",
		"conversation_id", doc.ConversationID,
		"pages", len(pages),
		"elapsed", ocrTime.Round(time.Millisecond).String(),
	)

	// Structuring runs sequentially: each call is independent and already
	// rate-limited upstream.
	results := make([]domain.PageResult, len(pages))
	for i, page := range pages {
		results[i] = domain.PageResult{
			ImageURL:   s.pageImageURL(doc.ConversationID, page.ImagePath),
			OCRText:    texts[i],
			Extraction: s.structurer.StructureText(ctx, texts[i]),
		}
	}

	return &domain.UploadResult{
		ConversationID: doc.ConversationID,
		Results:        results,
		RasterizeTime:  rasterTime,
		OCRTime:        ocrTime,
	}, nil
}

// pageImageURL builds the retrievable URL for a stored page image.
func (s *PipelineService) pageImageURL(conversationID, imagePath string) string {
	base := strings.TrimRight(s.config.GetPublicBaseURL(), "/")
	return fmt.Sprintf("%s/uploads/%s/%s", base, conversationID, filepath.Base(imagePath))
}
