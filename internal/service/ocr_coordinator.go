package service

import (
	"context"
	"time"

	"invoice-parser/internal/domain"

	"golang.org/x/sync/errgroup"
)

const defaultOCRWorkers = 4

// OCRCoordinator fans page images across a bounded worker pool and
// reassembles the extracted texts in original page order. Pool size is
// independent of page count.
type OCRCoordinator struct {
	engine  domain.OCREngine
	workers int
	logger  domain.Logger
}

// NewOCRCoordinator creates a coordinator over the given engine
func NewOCRCoordinator(engine domain.OCREngine, workers int, logger domain.Logger) *OCRCoordinator {
	if workers <= 0 {
		workers = defaultOCRWorkers
	}
	return &OCRCoordinator{
		engine:  engine,
		workers: workers,
		logger:  logger,
	}
}

// RecognizeAll returns one text per input page, index-aligned with the
// input regardless of completion order. Workers never return errors; a
// failed page already degraded to "" inside the engine.
func (c *OCRCoordinator) RecognizeAll(ctx context.Context, pages []domain.Page) []string {
	texts := make([]string, len(pages))
	if len(pages) == 0 {
		return texts
	}

	start := time.Now()
	sem := make(chan struct{}, c.workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return nil
			}
			// Each slot is written by exactly one goroutine.
			texts[i] = c.engine.Recognize(gctx, page.ImagePath)
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info("OCR completed",
		"pages", len(pages),
		"workers", c.workers,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return texts
}
