package config

import (
	"invoice-parser/internal/domain"
	"invoice-parser/internal/service"
	"invoice-parser/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config     domain.Config
	Logger     domain.Logger
	FileStore  domain.FileStore
	Rasterizer domain.Rasterizer
	OCR        domain.OCREngine
	Structurer domain.Structurer
	Pipeline   domain.Pipeline
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	fileStore := service.NewLocalFileStore(config.GetUploadPath(), appLogger)
	rasterizer := service.NewRasterizer(appLogger)
	ocrEngine := service.NewTesseractOCR(appLogger)
	coordinator := service.NewOCRCoordinator(ocrEngine, config.GetOCRWorkers(), appLogger)
	structurer := service.NewStructuringService(config, appLogger)
	pipeline := service.NewPipelineService(
		rasterizer,
		coordinator,
		structurer,
		config,
		appLogger,
	)

	return &Container{
		Config:     config,
		Logger:     appLogger,
		FileStore:  fileStore,
		Rasterizer: rasterizer,
		OCR:        ocrEngine,
		Structurer: structurer,
		Pipeline:   pipeline,
	}
}
