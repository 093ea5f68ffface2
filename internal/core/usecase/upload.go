package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/core/extract"
	"github.com/hngprojects/docxtract/internal/core/ports"
)

type UploadDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractors map[extract.Route]ports.FormatExtractor
	bucket     string
	maxBytes   int64
	logger     *slog.Logger
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractors map[extract.Route]ports.FormatExtractor,
	bucket string,
	maxBytes int64,
	logger *slog.Logger,
) *UploadDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadDocumentUseCase{
		repo:       repo,
		storage:    storage,
		extractors: extractors,
		bucket:     bucket,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Upload stores the raw file, runs synchronous extraction and classification
// and persists the record as PENDING. Extraction is best-effort: an
// unsupported type or a failing extractor degrades to an empty extraction,
// never to a request failure.
func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	fileName, contentType string,
	data []byte,
) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("no file provided"))
	}
	if uc.maxBytes > 0 && int64(len(data)) > uc.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("file exceeds max size of %d bytes", uc.maxBytes))
	}
	if fileName == "" {
		fileName = "unknown"
	}

	detected := extract.DetectMIME(data, fileName)
	if contentType == "" {
		contentType = detected
	}
	route := extract.DetectRoute(data, fileName)

	result := uc.runExtraction(ctx, route, data)

	id := uuid.NewString()
	key := storedObjectName(id, fileName)
	storagePath, err := uc.storage.Put(ctx, uc.bucket, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:              id,
		FileName:        fileName,
		ContentType:     contentType,
		StoragePath:     storagePath,
		SizeBytes:       int64(len(data)),
		ExtractedText:   result.Text,
		ContainsImages:  result.ContainsImages,
		ImageCount:      result.ImageCount,
		ContentCategory: result.ContentCategory,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	uc.logger.Info("document_uploaded",
		"document_id", doc.ID,
		"file_name", fileName,
		"route", string(route),
		"content_category", string(result.ContentCategory),
		"text_len", len(result.Text),
		"image_count", result.ImageCount,
	)
	return doc, nil
}

// runExtraction dispatches to the per-format strategy. An unknown route or a
// missing strategy yields the empty extraction.
func (uc *UploadDocumentUseCase) runExtraction(ctx context.Context, route extract.Route, data []byte) domain.ExtractionResult {
	strategy, ok := uc.extractors[route]
	if !ok {
		return extract.BuildResult("", false, 0)
	}
	text, containsImages, imageCount := strategy.Extract(ctx, data)
	return extract.BuildResult(text, containsImages, imageCount)
}

// storedObjectName derives the storage key from the document id and the
// original extension, so the object name never depends on untrusted input.
func storedObjectName(id, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(sanitizeFileName(fileName)), "."))
	if ext == "" {
		ext = "bin"
	}
	return id + "." + ext
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
