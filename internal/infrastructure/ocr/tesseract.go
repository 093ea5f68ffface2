// Package ocr wraps the tesseract and pdftoppm command line tools. A missing
// backend is an explicit, recoverable condition: extractors consume
// ErrUnavailable uniformly and degrade to empty text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnavailable signals that no OCR backend is installed. Callers treat it
// as "no text", never as a request failure.
var ErrUnavailable = errors.New("ocr backend unavailable")

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Language  string // default "eng"
	TessData  string // optional --tessdata-dir
}

// Engine is the tesseract-backed OcrEngine. Availability is probed once at
// construction.
type Engine struct {
	cfg       Config
	runner    Runner
	available bool
	logger    *slog.Logger
}

func NewEngine(ctx context.Context, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}

	e := &Engine{cfg: cfg, runner: ExecRunner{}, logger: logger}
	e.available = e.probe(ctx)
	if e.available {
		logger.Info("ocr_engine_ready", "binary", cfg.Tesseract, "language", cfg.Language)
	} else {
		logger.Warn("ocr_engine_unavailable", "binary", cfg.Tesseract)
	}
	return e
}

// NewEngineWithRunner is for tests.
func NewEngineWithRunner(cfg Config, runner Runner, available bool, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Engine{cfg: cfg, runner: runner, available: available, logger: logger}
}

func (e *Engine) probe(ctx context.Context) bool {
	_, _, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
	return err == nil
}

func (e *Engine) Available() bool {
	return e.available
}

// DoOCR runs tesseract over one image file and returns the recognized text.
func (e *Engine) DoOCR(ctx context.Context, imagePath string) (string, error) {
	if !e.available {
		return "", ErrUnavailable
	}

	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessData != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessData)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return strings.TrimSpace(string(out)), nil
}
