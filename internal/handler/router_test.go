package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"invoice-parser/internal/config"
)

func TestRouter_Health(t *testing.T) {
	os.Setenv("UPLOAD_PATH", t.TempDir())
	defer os.Unsetenv("UPLOAD_PATH")

	router := NewRouter(config.NewContainer())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	os.Setenv("UPLOAD_PATH", t.TempDir())
	defer os.Unsetenv("UPLOAD_PATH")

	router := NewRouter(config.NewContainer())

	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("GET /upload should not be routable")
	}
}
