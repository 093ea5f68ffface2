// Package image implements the raster-image extraction strategy: the image
// is the document, so extraction is a single OCR pass.
package image

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hngprojects/docxtract/internal/core/ports"
	"github.com/hngprojects/docxtract/internal/infrastructure/ocr"
)

type Extractor struct {
	engine ports.OcrEngine
	logger *slog.Logger
}

func NewExtractor(engine ports.OcrEngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger}
}

// Extract always reports one image. An unavailable or failing OCR backend
// degrades to empty text.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, bool, int) {
	tmp, err := os.CreateTemp("", "docxtract-img-*")
	if err != nil {
		e.logger.Warn("image_extract_tempfile_failed", "error", err)
		return "", true, 1
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		e.logger.Warn("image_extract_write_failed", "error", err)
		return "", true, 1
	}
	_ = tmp.Close()

	text, err := e.engine.DoOCR(ctx, tmp.Name())
	if err != nil {
		if errors.Is(err, ocr.ErrUnavailable) {
			e.logger.Warn("image_ocr_unavailable")
		} else {
			e.logger.Warn("image_ocr_failed", "error", err)
		}
		return "", true, 1
	}
	return text, true, 1
}
