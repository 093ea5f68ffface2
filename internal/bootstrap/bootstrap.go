package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hngprojects/docxtract/internal/config"
	"github.com/hngprojects/docxtract/internal/core/extract"
	"github.com/hngprojects/docxtract/internal/core/ports"
	"github.com/hngprojects/docxtract/internal/core/usecase"
	docxextractor "github.com/hngprojects/docxtract/internal/infrastructure/extractor/docx"
	imageextractor "github.com/hngprojects/docxtract/internal/infrastructure/extractor/image"
	"github.com/hngprojects/docxtract/internal/infrastructure/extractor/pdfdoc"
	"github.com/hngprojects/docxtract/internal/infrastructure/llm/openrouter"
	"github.com/hngprojects/docxtract/internal/infrastructure/ocr"
	"github.com/hngprojects/docxtract/internal/infrastructure/queue/nats"
	"github.com/hngprojects/docxtract/internal/infrastructure/repository/postgres"
	"github.com/hngprojects/docxtract/internal/infrastructure/resilience"
	"github.com/hngprojects/docxtract/internal/infrastructure/storage/localfs"
)

// App assembles the object graph shared by the api and worker binaries.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue   ports.MessageQueue
	Repo    ports.DocumentRepository
	Storage ports.ObjectStorage

	UploadUC  ports.DocumentUploader
	TriggerUC ports.AnalysisTrigger
	ReadUC    ports.DocumentReader
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		PublishPolicy: resilience.DefaultPolicy(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	engine := ocr.NewEngine(ctx, ocr.Config{
		Tesseract: cfg.OCRTesseract,
		Language:  cfg.OCRLanguage,
	}, logger)
	renderer := ocr.NewRenderer(cfg.OCRPdftoppm)

	extractors := map[extract.Route]ports.FormatExtractor{
		extract.RouteImage: imageextractor.NewExtractor(engine, logger),
		extract.RouteDocx:  docxextractor.NewExtractor(logger),
		extract.RoutePDF:   pdfdoc.NewExtractor(engine, renderer, cfg.OCRDPI, logger),
	}

	analyzer := openrouter.New(openrouter.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	}, resilience.DefaultPolicy(), logger)

	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, extractors, cfg.StorageBucket, cfg.UploadMaxBytes, logger)
	triggerUC := usecase.NewAnalyzeTriggerUseCase(repo, queue, logger)
	readUC := usecase.NewGetDocumentUseCase(repo, logger)
	processUC := usecase.NewProcessDocumentUseCase(repo, analyzer, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:   queue,
		Repo:    repo,
		Storage: storage,

		UploadUC:  uploadUC,
		TriggerUC: triggerUC,
		ReadUC:    readUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
