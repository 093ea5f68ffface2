package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/core/ports"
)

// ProcessDocumentUseCase runs one analysis job on the worker. The analyzer
// itself degrades transport and parse failures to the default result, so a
// FAILED terminal state here means the task was cancelled, timed out or hit
// an unexpected internal error.
type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	analyzer ports.DocumentAnalyzer
	logger   *slog.Logger
}

func NewProcessDocumentUseCase(repo ports.DocumentRepository, analyzer ports.DocumentAnalyzer, logger *slog.Logger) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{repo: repo, analyzer: analyzer, logger: logger}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
			uc.fail(documentID, err)
		}
	}()

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		// A missing record has nothing to mark; any other fetch failure
		// must still reach FAILED or the row stays PROCESSING with no
		// retry path.
		if !domain.IsKind(err, domain.ErrDocumentNotFound) {
			uc.fail(documentID, err)
		}
		return fmt.Errorf("fetch document: %w", err)
	}

	result, err := uc.analyzer.Analyze(ctx, domain.AnalysisInput{
		FileName:   doc.FileName,
		FileType:   doc.ContentType,
		Text:       doc.ExtractedText,
		HasImages:  doc.ContainsImages,
		ImageCount: doc.ImageCount,
	})
	if err != nil {
		uc.fail(documentID, err)
		return fmt.Errorf("analyze document: %w", err)
	}

	entitiesJSON, err := json.Marshal(result.Entities)
	if err != nil {
		uc.fail(documentID, err)
		return fmt.Errorf("marshal entities: %w", err)
	}

	if err := uc.repo.SaveAnalysis(ctx, documentID, result, string(entitiesJSON)); err != nil {
		uc.fail(documentID, err)
		return fmt.Errorf("save analysis: %w", err)
	}

	uc.logger.Info("analysis_completed",
		"document_id", documentID,
		"document_type", result.DocumentType,
		"summary_len", len(result.Summary),
	)
	return nil
}

// fail records the terminal FAILED state. Status writes use a fresh context
// so a cancelled job can still leave the record consistent.
func (uc *ProcessDocumentUseCase) fail(documentID string, cause error) {
	uc.logger.Error("analysis_failed", "document_id", documentID, "error", cause)
	if err := uc.repo.MarkAnalysisFailed(context.Background(), documentID); err != nil {
		uc.logger.Error("mark_failed_error", "document_id", documentID, "error", err)
	}
}
