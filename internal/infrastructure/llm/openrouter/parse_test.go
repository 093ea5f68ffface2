package openrouter

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseContentKeepsProseAsSummary(t *testing.T) {
	content := "This appears to be a scanned contract but I cannot read it."
	result := parseContent(content)
	if result.DocumentType != "unknown" {
		t.Fatalf("DocumentType = %q", result.DocumentType)
	}
	if result.Summary != content {
		t.Fatalf("Summary = %q", result.Summary)
	}
}

func TestParseContentEmptyGivesDefault(t *testing.T) {
	result := parseContent("   \n  ")
	if result.DocumentType != "unknown" || result.Summary != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Entities.Dates == nil {
		t.Fatalf("entity arrays must never be nil")
	}
}

func TestParseContentToleratesWrongFieldTypes(t *testing.T) {
	result := parseContent(`{"documentType": 7, "summary": "short note", "entities": {"names": "not-an-array", "dates": ["2023-01-01"]}}`)
	if result.DocumentType != "unknown" {
		t.Fatalf("DocumentType = %q, want unknown for non-string value", result.DocumentType)
	}
	if result.Summary != "short note" {
		t.Fatalf("Summary = %q", result.Summary)
	}
	if len(result.Entities.Names) != 0 {
		t.Fatalf("Names = %v, want empty", result.Entities.Names)
	}
	if len(result.Entities.Dates) != 1 || result.Entities.Dates[0] != "2023-01-01" {
		t.Fatalf("Dates = %v", result.Entities.Dates)
	}
}

func TestParseContentMissingEntitiesGivesEmptyArrays(t *testing.T) {
	result := parseContent(`{"documentType": "letter", "summary": "A short letter."}`)
	if result.DocumentType != "letter" {
		t.Fatalf("DocumentType = %q", result.DocumentType)
	}
	if result.Entities.Names == nil || result.Entities.Phones == nil {
		t.Fatalf("entity arrays must never be nil: %+v", result.Entities)
	}
}

func TestBuildPromptCapsText(t *testing.T) {
	input := sampleInput()
	input.Text = strings.Repeat("x", maxPromptText+500)
	prompt := buildPrompt(input)
	if strings.Count(prompt, "x") != maxPromptText {
		t.Fatalf("prompt text not capped: got %d", strings.Count(prompt, "x"))
	}
	if !strings.Contains(prompt, "invoice.pdf") {
		t.Fatalf("prompt missing file name")
	}
}

func TestTruncateTextKeepsRuneBoundary(t *testing.T) {
	// "é" is two bytes: a budget of 2 lands mid-rune and must back off,
	// a budget of 3 lands on a rune start and cuts cleanly.
	if got := truncateText("aéé", 2); got != "a" {
		t.Fatalf("truncateText = %q, want %q", got, "a")
	}
	got := truncateText("aéé", 3)
	if got != "aé" {
		t.Fatalf("truncateText = %q, want %q", got, "aé")
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if truncateText("abc", 3) != "abc" {
		t.Fatalf("text within budget must pass through unchanged")
	}
}
