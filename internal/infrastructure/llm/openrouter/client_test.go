package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hngprojects/docxtract/internal/core/domain"
	"github.com/hngprojects/docxtract/internal/infrastructure/resilience"
)

func testPolicy() resilience.Policy {
	return resilience.Policy{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func newTestClient(serverURL string) *Client {
	return New(Config{BaseURL: serverURL, APIKey: "test-key", Model: "test-model", Timeout: 5 * time.Second}, testPolicy(), nil)
}

func envelopeWith(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func sampleInput() domain.AnalysisInput {
	return domain.AnalysisInput{
		FileName:   "invoice.pdf",
		FileType:   "application/pdf",
		Text:       "Invoice #42 for Jane Doe, total $120.50, due 2024-03-01.",
		HasImages:  false,
		ImageCount: 0,
	}
}

func TestAnalyzeParsesWellFormedAnswer(t *testing.T) {
	var gotAuth, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var payload chatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotModel = payload.Model
		if len(payload.Messages) != 1 || !strings.Contains(payload.Messages[0].Content, "Invoice #42") {
			t.Fatalf("unexpected messages: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(envelopeWith(`{
			"documentType": "invoice",
			"summary": "Invoice 42 billed to Jane Doe.",
			"entities": {
				"names": ["Jane Doe"],
				"dates": ["2024-03-01"],
				"amounts": ["$120.50"],
				"emails": [],
				"phones": []
			}
		}`)))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotModel != "test-model" {
		t.Fatalf("model = %q", gotModel)
	}
	if result.DocumentType != "invoice" {
		t.Fatalf("DocumentType = %q", result.DocumentType)
	}
	if result.Summary != "Invoice 42 billed to Jane Doe." {
		t.Fatalf("Summary = %q", result.Summary)
	}
	if len(result.Entities.Names) != 1 || result.Entities.Names[0] != "Jane Doe" {
		t.Fatalf("Names = %v", result.Entities.Names)
	}
	if result.Entities.Emails == nil || result.Entities.Phones == nil {
		t.Fatalf("entity arrays must never be nil: %+v", result.Entities)
	}
}

func TestAnalyzeRecoversJSONAfterProse(t *testing.T) {
	content := "Sure! Here is the analysis you asked for:\n" +
		`{"documentType":"cv","summary":"A resume.","entities":{"names":["Ada"],"dates":[],"amounts":[],"emails":[],"phones":[]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(envelopeWith(content)))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.DocumentType != "cv" || result.Summary != "A resume." {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAnalyzeHTMLBodyYieldsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Gateway error</body></html>"))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	assertDefault(t, result)
}

func TestAnalyzeServerErrorYieldsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	assertDefault(t, result)
}

func TestAnalyzeEmptyContentYieldsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(envelopeWith("   ")))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	assertDefault(t, result)
}

func TestAnalyzeReturnsErrorOnDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := newTestClient(server.URL).Analyze(ctx, sampleInput())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	assertDefault(t, result)
}

func assertDefault(t *testing.T, result domain.AnalysisResult) {
	t.Helper()
	if result.DocumentType != "unknown" {
		t.Fatalf("DocumentType = %q, want unknown", result.DocumentType)
	}
	if result.Summary != "" {
		t.Fatalf("Summary = %q, want empty", result.Summary)
	}
	if result.Entities.Names == nil || len(result.Entities.Names) != 0 {
		t.Fatalf("Names = %v, want empty slice", result.Entities.Names)
	}
}
