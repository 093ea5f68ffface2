package ports

import (
	"context"
	"io"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

// DocumentRepository persists document records and owns every status
// transition. BeginProcessing and MarkViewed are compare-and-set operations:
// they report whether this caller won the transition.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)

	// BeginProcessing atomically moves PENDING or FAILED to PROCESSING.
	// Returns false when the record was in neither state.
	BeginProcessing(ctx context.Context, id string) (bool, error)

	// SaveAnalysis writes the analysis fields and moves the record to
	// COMPLETED. The analyzed flag is derived from the summary.
	SaveAnalysis(ctx context.Context, id string, result domain.AnalysisResult, entitiesJSON string) error

	// MarkAnalysisFailed moves the record to FAILED and clears any analysis
	// fields from an earlier attempt.
	MarkAnalysisFailed(ctx context.Context, id string) error

	// MarkViewed flips viewed false->true. Returns true only for the caller
	// that performed the flip.
	MarkViewed(ctx context.Context, id string) (bool, error)
}

// ObjectStorage stores the raw upload, write-once. The bucket is created on
// demand; the returned storage path is "<bucket>/<key>" and is what Open
// takes back to serve downloads.
type ObjectStorage interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
}

// MessageQueue hands the analysis job to the worker pool.
type MessageQueue interface {
	PublishAnalysisRequested(ctx context.Context, documentID string) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// OcrEngine converts a raster image file to text. Implementations report
// missing backends with a sentinel error; callers degrade to empty text.
type OcrEngine interface {
	Available() bool
	DoOCR(ctx context.Context, imagePath string) (string, error)
}

// FormatExtractor is one per-format extraction strategy. Implementations are
// best-effort and never fail the upload: internal errors degrade to empty
// output.
type FormatExtractor interface {
	Extract(ctx context.Context, data []byte) (text string, containsImages bool, imageCount int)
}

// DocumentAnalyzer runs the LLM analysis. Transport or parse failures
// degrade to the default result; an error is returned only when the task
// itself was cancelled or timed out.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input domain.AnalysisInput) (domain.AnalysisResult, error)
}
