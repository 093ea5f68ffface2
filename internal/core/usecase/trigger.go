package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/core/ports"
)

// AnalyzeTriggerUseCase owns the analysis status state machine. The
// PROCESSING flip is a repository-level compare-and-set, so two concurrent
// triggers on the same PENDING or FAILED record enqueue exactly one job.
type AnalyzeTriggerUseCase struct {
	repo   ports.DocumentRepository
	queue  ports.MessageQueue
	logger *slog.Logger
}

func NewAnalyzeTriggerUseCase(repo ports.DocumentRepository, queue ports.MessageQueue, logger *slog.Logger) *AnalyzeTriggerUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeTriggerUseCase{repo: repo, queue: queue, logger: logger}
}

func (uc *AnalyzeTriggerUseCase) Trigger(ctx context.Context, documentID string) (domain.TriggerOutcome, *domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return "", nil, err
	}

	switch doc.Status {
	case domain.StatusProcessing:
		return domain.TriggerAlreadyProcessing, doc, nil

	case domain.StatusCompleted:
		if strings.TrimSpace(doc.Summary) != "" {
			return domain.TriggerAlreadyCompleted, doc, nil
		}
		// A completed record without a summary is corrupt: reclassify it
		// as failed instead of trusting it.
		if err := uc.repo.MarkAnalysisFailed(ctx, documentID); err != nil {
			return "", nil, fmt.Errorf("reclassify blank completion: %w", err)
		}
		doc.Status = domain.StatusFailed
		uc.logger.Warn("blank_completed_analysis_reclassified", "document_id", documentID)
		return domain.TriggerPreviousFailed, doc, nil

	default: // PENDING or FAILED
		won, err := uc.repo.BeginProcessing(ctx, documentID)
		if err != nil {
			return "", nil, fmt.Errorf("begin processing: %w", err)
		}
		if !won {
			// A concurrent trigger took the transition first.
			return domain.TriggerAlreadyProcessing, doc, nil
		}
		if err := uc.queue.PublishAnalysisRequested(ctx, documentID); err != nil {
			// The record would otherwise stay PROCESSING with no worker
			// ever picking it up.
			if failErr := uc.repo.MarkAnalysisFailed(ctx, documentID); failErr != nil {
				uc.logger.Error("rollback_after_publish_failure", "document_id", documentID, "error", failErr)
			}
			return "", nil, fmt.Errorf("publish analysis job: %w", err)
		}
		doc.Status = domain.StatusProcessing
		uc.logger.Info("analysis_started", "document_id", documentID)
		return domain.TriggerStarted, doc, nil
	}
}
