package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType identifies the kind of uploaded artifact.
type MediaType string

const (
	MediaTypePDF   MediaType = "application/pdf"
	MediaTypePNG   MediaType = "image/png"
	MediaTypeJPEG  MediaType = "image/jpeg"
	MediaTypeOther MediaType = ""
)

// MediaTypeFromFilename maps a filename extension to a MediaType.
// Unknown extensions map to MediaTypeOther and are rejected upstream.
func MediaTypeFromFilename(name string) MediaType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".png":
		return MediaTypePNG
	case ".jpg", ".jpeg":
		return MediaTypeJPEG
	default:
		return MediaTypeOther
	}
}

// IsImage reports whether the media type is a raster image that can be
// handed to OCR without conversion.
func (m MediaType) IsImage() bool {
	return m == MediaTypePNG || m == MediaTypeJPEG
}

// Document represents one uploaded artifact. It is created on upload and
// read-only afterwards; its files live under a per-conversation directory.
type Document struct {
	ConversationID string    `json:"conversation_id"`
	FilePath       string    `json:"-"`
	OriginalName   string    `json:"original_name"`
	MediaType      MediaType `json:"media_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// Page is one rasterized image derived from a Document. Index is the
// zero-based position within the document. For image uploads the single
// Page references the original file itself.
type Page struct {
	Index     int    `json:"index"`
	ImagePath string `json:"-"`
}

// PageResult is the terminal record for one page: a retrievable reference
// to the page image, the raw OCR text (possibly empty) and the structuring
// outcome. Results are always ordered by page index and there is exactly
// one per page, failures included.
type PageResult struct {
	ImageURL   string               `json:"image_url"`
	OCRText    string               `json:"ocr_text"`
	Extraction StructuredExtraction `json:"extraction"`
}

// UploadResult is the full outcome of processing one Document.
type UploadResult struct {
	ConversationID string        `json:"conversation_id"`
	Results        []PageResult  `json:"results"`
	RasterizeTime  time.Duration `json:"-"`
	OCRTime        time.Duration `json:"-"`
}
