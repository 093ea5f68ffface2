package extract

import (
	"strings"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

// TextThreshold is the minimum trimmed length for extracted text to count as
// meaningful. Shorter output is treated as negligible noise.
const TextThreshold = 20

// HasText reports whether extracted text clears the meaningful-text threshold.
func HasText(text string) bool {
	return len(strings.TrimSpace(text)) > TextThreshold
}

// Classify derives the content category and summary booleans from extracted
// text and the image signal. Deterministic, no I/O.
func Classify(text string, containsImages bool) (domain.ContentCategory, domain.ExtractionSummary) {
	hasText := HasText(text)

	var category domain.ContentCategory
	switch {
	case hasText && containsImages:
		category = domain.CategoryMixedContent
	case hasText:
		category = domain.CategoryTextBased
	case containsImages:
		category = domain.CategoryImageBased
	default:
		category = domain.CategoryUnknown
	}

	return category, domain.ExtractionSummary{
		IsBlank:   !hasText && !containsImages,
		HasText:   hasText,
		HasImages: containsImages,
	}
}

// BuildResult assembles the full extraction result from the raw strategy
// output.
func BuildResult(text string, containsImages bool, imageCount int) domain.ExtractionResult {
	category, summary := Classify(text, containsImages)
	return domain.ExtractionResult{
		Text:            text,
		ContainsImages:  containsImages,
		ImageCount:      imageCount,
		ContentCategory: category,
		Summary:         summary,
	}
}
