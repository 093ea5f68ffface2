package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	calls [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.stdout, s.stderr, s.err
}

func TestDoOCRPassesLanguageAndTrimsOutput(t *testing.T) {
	runner := &stubRunner{stdout: []byte("  recognized text \n")}
	engine := NewEngineWithRunner(Config{Tesseract: "tesseract", Language: "deu"}, runner, true, nil)

	text, err := engine.DoOCR(context.Background(), "/tmp/page.png")
	if err != nil {
		t.Fatalf("DoOCR() error = %v", err)
	}
	if text != "recognized text" {
		t.Fatalf("text = %q", text)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	want := []string{"tesseract", "/tmp/page.png", "stdout", "-l", "deu"}
	if len(call) != len(want) {
		t.Fatalf("call = %v", call)
	}
	for i := range want {
		if call[i] != want[i] {
			t.Fatalf("call = %v, want %v", call, want)
		}
	}
}

func TestDoOCRIncludesStderrInError(t *testing.T) {
	runner := &stubRunner{stderr: []byte("could not open image"), err: errors.New("exit status 1")}
	engine := NewEngineWithRunner(Config{Tesseract: "tesseract"}, runner, true, nil)

	_, err := engine.DoOCR(context.Background(), "/tmp/page.png")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "could not open image") {
		t.Fatalf("error should carry stderr, got %q", got)
	}
}

func TestDoOCRUnavailableEngine(t *testing.T) {
	runner := &stubRunner{}
	engine := NewEngineWithRunner(Config{}, runner, false, nil)

	if engine.Available() {
		t.Fatalf("engine must report unavailable")
	}
	_, err := engine.DoOCR(context.Background(), "/tmp/page.png")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("unavailable engine must not invoke the binary")
	}
}
