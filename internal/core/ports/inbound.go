package ports

import (
	"context"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

// DocumentUploader is the inbound contract for upload orchestration:
// storage, synchronous extraction, classification, record creation.
type DocumentUploader interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*domain.Document, error)
}

// AnalysisTrigger is the inbound contract for the analyze-trigger state
// machine.
type AnalysisTrigger interface {
	Trigger(ctx context.Context, documentID string) (domain.TriggerOutcome, *domain.Document, error)
}

// DocumentReader returns the combined record and performs the one-shot
// viewed transition on the first observation of a completed analysis.
type DocumentReader interface {
	Get(ctx context.Context, id string) (*domain.Document, bool, error)
}

// DocumentProcessor is the worker-side contract for one analysis job.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
