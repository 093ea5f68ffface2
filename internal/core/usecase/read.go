package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/core/ports"
)

// GetDocumentUseCase returns the combined record. The first observation of a
// completed analysis flips the viewed flag; the flip is a compare-and-set so
// concurrent readers see exactly one first-completion notice.
type GetDocumentUseCase struct {
	repo   ports.DocumentRepository
	logger *slog.Logger
}

func NewGetDocumentUseCase(repo ports.DocumentRepository, logger *slog.Logger) *GetDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetDocumentUseCase{repo: repo, logger: logger}
}

// Get returns the document and whether this call was the first observation
// of its completed analysis.
func (uc *GetDocumentUseCase) Get(ctx context.Context, id string) (*domain.Document, bool, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if doc.Status != domain.StatusCompleted || doc.Viewed {
		return doc, false, nil
	}

	first, err := uc.repo.MarkViewed(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("mark viewed: %w", err)
	}
	doc.Viewed = true
	if first {
		uc.logger.Info("first_completion_observed", "document_id", id)
	}
	return doc, first, nil
}
