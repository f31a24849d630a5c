package domain

import (
	"context"
	"io"
)

// Rasterizer turns an uploaded document into an ordered sequence of page
// images. Image uploads pass through as a single page; PDFs are rendered
// one image per page. A document that yields no pages is an error, never
// an empty success.
type Rasterizer interface {
	Rasterize(ctx context.Context, filePath string, mediaType MediaType) ([]Page, error)
}

// OCREngine extracts text from one page image. Failures are recovered to
// an empty string so a bad page never aborts its siblings.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) string
}

// OCRCoordinator fans pages across a bounded worker pool and returns the
// texts in original page order regardless of completion order.
type OCRCoordinator interface {
	RecognizeAll(ctx context.Context, pages []Page) []string
}

// Structurer sends page content to the model service and maps the reply
// into a StructuredExtraction. Both variants perform a single attempt per
// call unless retries are configured.
type Structurer interface {
	StructureText(ctx context.Context, ocrText string) StructuredExtraction
	StructureImage(ctx context.Context, imagePath string, instruction string) StructuredExtraction
}

// Pipeline drives rasterization, OCR and structuring for one Document.
type Pipeline interface {
	Process(ctx context.Context, doc *Document) (*UploadResult, error)
}

// FileStore persists uploads under a per-conversation directory and
// resolves stored files for serving.
type FileStore interface {
	Save(conversationID, filename string, r io.Reader) (string, error)
	Resolve(conversationID, filename string) (string, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetPublicBaseURL() string
	GetOpenRouterAPIKey() string
	GetOpenRouterModel() string
	GetStructuringTimeout() int
	GetOCRWorkers() int
	GetStructuringMaxRetries() int
	GetStructuringRetryBackoffMS() int
}
