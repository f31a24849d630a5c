// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"time"

	"invoice-parser/internal/domain"

	"github.com/google/uuid"
)

// UploadHandler accepts an invoice document, stores it under a fresh
// conversation directory and runs the extraction pipeline on it.
type UploadHandler struct {
	store    domain.FileStore
	pipeline domain.Pipeline
	config   domain.Config
	logger   domain.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(store domain.FileStore, pipeline domain.Pipeline, config domain.Config, logger domain.Logger) *UploadHandler {
	return &UploadHandler{
		store:    store,
		pipeline: pipeline,
		config:   config,
		logger:   logger,
	}
}

// Upload handles POST /upload: one multipart file (image or PDF) in the
// "file" field. The response always carries one result per page, or a
// single error when the document could not be processed at all.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.config.GetMaxFileSize()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.config.GetMaxFileSize() {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	mediaType := domain.MediaTypeFromFilename(header.Filename)
	if mediaType == domain.MediaTypeOther {
		writeError(w, http.StatusBadRequest, "unsupported file type, expected PDF or image")
		return
	}

	conversationID := uuid.New().String()
	storedPath, err := h.store.Save(conversationID, header.Filename, file)
	if err != nil {
		h.logger.Error("Failed to store upload", err, "conversation_id", conversationID)
		writeError(w, http.StatusInternalServerError, "failed to store the file")
		return
	}

	doc := &domain.Document{
		ConversationID: conversationID,
		FilePath:       storedPath,
		OriginalName:   header.Filename,
		MediaType:      mediaType,
		CreatedAt:      time.Now().UTC(),
	}

	h.logger.Info("Processing upload",
		"conversation_id", conversationID,
		"file", header.Filename,
		"size", header.Size,
	)

	result, err := h.pipeline.Process(r.Context(), doc)
	if err != nil {
		h.logger.Error("Pipeline failed", err, "conversation_id", conversationID)
		writeError(w, http.StatusInternalServerError, "Failed to process the file")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
