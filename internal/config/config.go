package config

import (
	"os"
	"strconv"

	"invoice-parser/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort    string
	UploadPath    string
	MaxFileSize   int64
	LogLevel      string
	PublicBaseURL string

	OpenRouterAPIKey string
	OpenRouterModel  string
	// StructuringTimeout bounds each outbound structuring request, in
	// seconds. Upstream callers in this domain use 30-180s.
	StructuringTimeout int

	OCRWorkers int

	// Retry policy for structuring transport failures. Zero retries keeps
	// the single-attempt default; the knob exists so the policy is
	// explicit and testable rather than hardcoded.
	StructuringMaxRetries     int
	StructuringRetryBackoffMS int
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:    getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:    getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:   getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		OpenRouterAPIKey:   getEnvOrDefault("OPENROUTER_API_KEY", ""),
		OpenRouterModel:    getEnvOrDefault("OPENROUTER_MODEL", "qwen/qwen3-14b:free"),
		StructuringTimeout: getEnvIntOrDefault("OPENROUTER_TIMEOUT_SECONDS", 120),

		OCRWorkers: getEnvIntOrDefault("OCR_WORKERS", 4),

		StructuringMaxRetries:     getEnvIntOrDefault("STRUCTURING_MAX_RETRIES", 0),
		StructuringRetryBackoffMS: getEnvIntOrDefault("STRUCTURING_RETRY_BACKOFF_MS", 500),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetPublicBaseURL returns the externally reachable base URL used to build
// page image links
func (c *AppConfig) GetPublicBaseURL() string {
	return c.PublicBaseURL
}

// GetOpenRouterAPIKey returns the OpenRouter API key
func (c *AppConfig) GetOpenRouterAPIKey() string {
	return c.OpenRouterAPIKey
}

// GetOpenRouterModel returns the model slug sent with structuring requests
func (c *AppConfig) GetOpenRouterModel() string {
	return c.OpenRouterModel
}

// GetStructuringTimeout returns the per-request timeout in seconds
func (c *AppConfig) GetStructuringTimeout() int {
	return c.StructuringTimeout
}

// GetOCRWorkers returns the OCR worker pool size
func (c *AppConfig) GetOCRWorkers() int {
	return c.OCRWorkers
}

// GetStructuringMaxRetries returns the retry count for transport failures
func (c *AppConfig) GetStructuringMaxRetries() int {
	return c.StructuringMaxRetries
}

// GetStructuringRetryBackoffMS returns the retry backoff in milliseconds
func (c *AppConfig) GetStructuringRetryBackoffMS() int {
	return c.StructuringRetryBackoffMS
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
