package domain

import "time"

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "PENDING"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusCompleted  DocumentStatus = "COMPLETED"
	StatusFailed     DocumentStatus = "FAILED"
)

type ContentCategory string

const (
	CategoryTextBased    ContentCategory = "TEXT_BASED"
	CategoryImageBased   ContentCategory = "IMAGE_BASED"
	CategoryMixedContent ContentCategory = "MIXED_CONTENT"
	CategoryUnknown      ContentCategory = "UNKNOWN"
)

// Document is the persisted record of one upload. Extraction fields are set
// once at upload time; analysis fields are written only when an analysis
// attempt reaches a terminal status.
type Document struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	StoragePath string `json:"storage_path"`
	SizeBytes   int64  `json:"size_bytes"`

	ExtractedText   string          `json:"extracted_text,omitempty"`
	ContainsImages  bool            `json:"contains_images"`
	ImageCount      int             `json:"image_count"`
	ContentCategory ContentCategory `json:"content_category"`

	Analyzed     bool   `json:"analyzed"`
	DocumentType string `json:"document_type,omitempty"`
	Summary      string `json:"summary,omitempty"`
	EntitiesJSON string `json:"entities_json,omitempty"`

	Status    DocumentStatus `json:"status"`
	Viewed    bool           `json:"viewed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ExtractionSummary is derived from the extracted text and image signal,
// never set independently.
type ExtractionSummary struct {
	IsBlank   bool `json:"isBlank"`
	HasText   bool `json:"hasText"`
	HasImages bool `json:"hasImages"`
}

// ExtractionResult is the transient outcome of format-specific extraction,
// produced once per upload.
type ExtractionResult struct {
	Text            string
	ContainsImages  bool
	ImageCount      int
	ContentCategory ContentCategory
	Summary         ExtractionSummary
}

// Entities holds the structured spans pulled out by the LLM. Slices are
// always non-nil so a serialized result never contains null arrays.
type Entities struct {
	Names   []string `json:"names"`
	Dates   []string `json:"dates"`
	Amounts []string `json:"amounts"`
	Emails  []string `json:"emails"`
	Phones  []string `json:"phones"`
}

// AnalysisResult is the structured document analysis produced by the LLM.
type AnalysisResult struct {
	DocumentType string   `json:"documentType"`
	Summary      string   `json:"summary"`
	Entities     Entities `json:"entities"`
}

// DefaultAnalysisResult is the safe fallback for every LLM failure path.
func DefaultAnalysisResult() AnalysisResult {
	return AnalysisResult{
		DocumentType: "unknown",
		Summary:      "",
		Entities:     EmptyEntities(),
	}
}

func EmptyEntities() Entities {
	return Entities{
		Names:   []string{},
		Dates:   []string{},
		Amounts: []string{},
		Emails:  []string{},
		Phones:  []string{},
	}
}

// AnalysisInput carries the stored extraction output into the LLM analyzer.
type AnalysisInput struct {
	FileName   string
	FileType   string
	Text       string
	HasImages  bool
	ImageCount int
}

// TriggerOutcome reports what an analyze-trigger request observed.
type TriggerOutcome string

const (
	TriggerStarted           TriggerOutcome = "STARTED"
	TriggerAlreadyProcessing TriggerOutcome = "ALREADY_PROCESSING"
	TriggerAlreadyCompleted  TriggerOutcome = "ALREADY_COMPLETED"
	TriggerPreviousFailed    TriggerOutcome = "PREVIOUS_FAILED"
)
