package pdfdoc

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/hngprojects/docxtract/internal/infrastructure/ocr"
)

type fakeEngine struct {
	available bool
	text      string
	err       error
	ocrCalls  []string
}

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) DoOCR(_ context.Context, imagePath string) (string, error) {
	f.ocrCalls = append(f.ocrCalls, imagePath)
	return f.text, f.err
}

// renderStub answers pdftoppm invocations by creating one page file under the
// requested output prefix, the way the real binary does.
type renderStub struct {
	calls int
	err   error
}

func (r *renderStub) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	r.calls++
	if r.err != nil {
		return nil, []byte("render failed"), r.err
	}
	prefix := args[len(args)-1]
	if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o644); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func newFallbackExtractor(engine *fakeEngine, stub *renderStub) *Extractor {
	return NewExtractor(engine, ocr.NewRendererWithRunner("pdftoppm", stub), 0, nil)
}

func TestOCRFallbackAppendsBelowTextThreshold(t *testing.T) {
	engine := &fakeEngine{available: true, text: "Scanned page body"}
	stub := &renderStub{}
	e := newFallbackExtractor(engine, stub)

	got := e.withOCRFallback(context.Background(), "Invoice 42", "/tmp/doc.pdf", 1)

	if got != "Invoice 42\nScanned page body" {
		t.Fatalf("text = %q, want native joined with OCR output", got)
	}
	if len(engine.ocrCalls) != 1 {
		t.Fatalf("DoOCR calls = %d, want 1", len(engine.ocrCalls))
	}
}

func TestOCRSkippedWhenNativeTextSufficient(t *testing.T) {
	engine := &fakeEngine{available: true, text: "never used"}
	stub := &renderStub{}
	e := newFallbackExtractor(engine, stub)

	native := "Native text with thirty chars."
	got := e.withOCRFallback(context.Background(), native, "/tmp/doc.pdf", 1)

	if got != native {
		t.Fatalf("text = %q, want native untouched", got)
	}
	if stub.calls != 0 {
		t.Fatalf("renderer invoked %d times, want 0", stub.calls)
	}
	if len(engine.ocrCalls) != 0 {
		t.Fatalf("DoOCR invoked %d times, want 0", len(engine.ocrCalls))
	}
}

func TestOCRSkippedWithoutImagePages(t *testing.T) {
	engine := &fakeEngine{available: true, text: "never used"}
	stub := &renderStub{}
	e := newFallbackExtractor(engine, stub)

	got := e.withOCRFallback(context.Background(), "short", "/tmp/doc.pdf", 0)

	if got != "short" {
		t.Fatalf("text = %q, want native untouched", got)
	}
	if stub.calls != 0 || len(engine.ocrCalls) != 0 {
		t.Fatalf("no render or OCR expected for a page-image-free document")
	}
}

func TestOCRFailureKeepsNativeText(t *testing.T) {
	engine := &fakeEngine{available: true, err: errors.New("tesseract crashed")}
	stub := &renderStub{}
	e := newFallbackExtractor(engine, stub)

	got := e.withOCRFallback(context.Background(), "Invoice 42", "/tmp/doc.pdf", 1)

	if got != "Invoice 42" {
		t.Fatalf("text = %q, want native preserved on OCR failure", got)
	}
}

func TestOCRSkippedWhenEngineUnavailable(t *testing.T) {
	engine := &fakeEngine{available: false, text: "never used"}
	stub := &renderStub{}
	e := newFallbackExtractor(engine, stub)

	got := e.withOCRFallback(context.Background(), "Invoice 42", "/tmp/doc.pdf", 1)

	if got != "Invoice 42" {
		t.Fatalf("text = %q, want native preserved", got)
	}
	if stub.calls != 0 {
		t.Fatalf("renderer invoked %d times, want 0", stub.calls)
	}
}
