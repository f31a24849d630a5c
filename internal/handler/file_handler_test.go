package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"invoice-parser/internal/service"

	"github.com/gorilla/mux"
)

func TestGetFile_ServesStoredImage(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conv-1"), 0o755); err != nil {
		t.Fatal(err)
	}
	imagePath := filepath.Join(root, "conv-1", "invoice_0.png")
	if err := os.WriteFile(imagePath, []byte("png bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := service.NewLocalFileStore(root, NewMockHandlerLogger())
	h := NewFileHandler(store, NewMockHandlerLogger())

	router := mux.NewRouter()
	router.HandleFunc("/uploads/{conversationID}/{filename}", h.GetFile)

	req := httptest.NewRequest(http.MethodGet, "/uploads/conv-1/invoice_0.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "png bytes" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestGetFile_NotFound(t *testing.T) {
	store := service.NewLocalFileStore(t.TempDir(), NewMockHandlerLogger())
	h := NewFileHandler(store, NewMockHandlerLogger())

	router := mux.NewRouter()
	router.HandleFunc("/uploads/{conversationID}/{filename}", h.GetFile)

	req := httptest.NewRequest(http.MethodGet, "/uploads/conv-1/missing.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
