package handler

import (
	"net/http"

	"invoice-parser/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"invoice-parser"}`))
	}).Methods("GET")

	// Initialize handlers
	uploadHandler := NewUploadHandler(container.FileStore, container.Pipeline, container.Config, container.Logger)
	fileHandler := NewFileHandler(container.FileStore, container.Logger)

	router.HandleFunc("/upload", uploadHandler.Upload).Methods("POST")
	router.HandleFunc("/uploads/{conversationID}/{filename}", fileHandler.GetFile).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:8501", // Streamlit dev server
			"http://localhost:5173", // Vite dev server
			"http://localhost:3000", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
