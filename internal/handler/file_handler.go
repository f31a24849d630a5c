package handler

import (
	"errors"
	"net/http"

	"invoice-parser/internal/domain"

	"github.com/gorilla/mux"
)

// FileHandler serves stored page images back to the presentation layer.
type FileHandler struct {
	store  domain.FileStore
	logger domain.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(store domain.FileStore, logger domain.Logger) *FileHandler {
	return &FileHandler{store: store, logger: logger}
}

// GetFile handles GET /uploads/{conversationID}/{filename}.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conversationID := vars["conversationID"]
	filename := vars["filename"]

	path, err := h.store.Resolve(conversationID, filename)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Warn("Rejected file request", "conversation_id", conversationID, "file", filename, "error", err)
		writeError(w, http.StatusBadRequest, "invalid file reference")
		return
	}

	http.ServeFile(w, r, path)
}
