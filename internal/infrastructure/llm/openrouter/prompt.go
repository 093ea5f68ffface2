package openrouter

import (
	"fmt"
	"unicode/utf8"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

// maxPromptText caps the amount of extracted text embedded in the prompt.
const maxPromptText = 12000

// buildPrompt composes the single instruction block sent to the model. The
// request body is marshalled with encoding/json, which handles newline and
// quote escaping in the embedded text.
func buildPrompt(input domain.AnalysisInput) string {
	text := truncateText(input.Text, maxPromptText)

	return fmt.Sprintf(`You are a document analyzer. Given the extracted text and metadata below,
classify the document type (e.g., invoice, cv, report, letter, email, receipt, contract),
provide a concise summary in 2-3 sentences,
and extract structured entities (names, dates, amounts, emails, phones).
Respond with exactly one JSON object and nothing else.
The object must have fields: documentType (string), summary (string),
entities (object with array-of-string fields: names, dates, amounts, emails, phones).
If an entity kind is not present, use an empty array.

Metadata:
File Name: %s
File Type: %s
Has Images: %t
Image Count: %d

Extracted Text:
%s`,
		input.FileName,
		input.FileType,
		input.HasImages,
		input.ImageCount,
		text,
	)
}

// truncateText cuts at a byte budget, backing off to a rune boundary so the
// cap never splits a multi-byte character.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
