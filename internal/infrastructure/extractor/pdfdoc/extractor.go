// Package pdfdoc implements the PDF extraction strategy: native text
// stripping, a cheap rendered-page probe for image-bearing pages, and an OCR
// fallback that only kicks in when native text is negligible.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hngprojects/docxtract/internal/core/extract"
	"github.com/hngprojects/docxtract/internal/core/ports"
	"github.com/hngprojects/docxtract/internal/infrastructure/ocr"
)

const (
	// probeDPI renders pages just large enough for the sampled blank-page
	// check.
	probeDPI = 16

	// defaultOCRDPI is the render resolution for pages that actually go
	// through OCR.
	defaultOCRDPI = 300
)

type Extractor struct {
	engine   ports.OcrEngine
	renderer *ocr.Renderer
	ocrDPI   int
	logger   *slog.Logger
}

func NewExtractor(engine ports.OcrEngine, renderer *ocr.Renderer, ocrDPI int, logger *slog.Logger) *Extractor {
	if ocrDPI <= 0 {
		ocrDPI = defaultOCRDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, renderer: renderer, ocrDPI: ocrDPI, logger: logger}
}

// Extract strips native text, estimates image-bearing pages with the probe
// render, and appends OCR output when the native text is below the has-text
// threshold. Every failure path degrades rather than propagates.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, bool, int) {
	if err := validatePDF(data); err != nil {
		e.logger.Warn("pdf_validation_failed", "error", err)
		return "", false, 0
	}

	text := e.nativeText(data)

	pdfPath, cleanup, err := writeTempPDF(data)
	if err != nil {
		e.logger.Warn("pdf_tempfile_failed", "error", err)
		return text, false, 0
	}
	defer cleanup()

	imagePages := e.countImagePages(ctx, pdfPath)
	text = e.withOCRFallback(ctx, text, pdfPath, imagePages)
	return text, imagePages > 0, imagePages
}

// withOCRFallback appends OCR output to the native text, but only when the
// native text is below the has-text threshold and at least one page carries
// an image. Above the threshold the expensive OCR pass never runs.
func (e *Extractor) withOCRFallback(ctx context.Context, text, pdfPath string, imagePages int) string {
	if extract.HasText(text) || imagePages == 0 {
		return text
	}
	ocrText := e.ocrAllPages(ctx, pdfPath)
	if ocrText == "" {
		return text
	}
	return strings.TrimSpace(text + "\n" + ocrText)
}

// nativeText runs the text-stripping pass over every page. A page that fails
// to decode is skipped, not fatal.
func (e *Extractor) nativeText(data []byte) string {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf_text_strip_panic", "cause", fmt.Sprint(r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("pdf_text_strip_failed", "error", err)
		return ""
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 && content != "" {
			b.WriteByte('\n')
		}
		b.WriteString(content)
	}
	return b.String()
}

// countImagePages renders every page at probe resolution and counts pages
// that are not blank under the sampled near-white check.
func (e *Extractor) countImagePages(ctx context.Context, pdfPath string) int {
	pages, cleanup, err := e.renderer.RenderPages(ctx, pdfPath, probeDPI)
	if err != nil {
		e.logger.Warn("pdf_probe_render_failed", "error", err)
		return 0
	}
	defer cleanup()

	count := 0
	for _, p := range pages {
		if e.renderedPageHasContent(p) {
			count++
		}
	}
	return count
}

func (e *Extractor) renderedPageHasContent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return false
	}
	return pageHasContent(img)
}

// ocrAllPages renders every page at OCR resolution and concatenates the OCR
// output. This is the expensive fallback and only runs when the native text
// was negligible.
func (e *Extractor) ocrAllPages(ctx context.Context, pdfPath string) string {
	if !e.engine.Available() {
		e.logger.Warn("pdf_ocr_skipped_engine_unavailable")
		return ""
	}

	pages, cleanup, err := e.renderer.RenderPages(ctx, pdfPath, e.ocrDPI)
	if err != nil {
		e.logger.Warn("pdf_ocr_render_failed", "error", err)
		return ""
	}
	defer cleanup()

	var b strings.Builder
	for _, p := range pages {
		text, err := e.engine.DoOCR(ctx, p)
		if err != nil {
			e.logger.Warn("pdf_page_ocr_failed", "page", p, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String()
}

func validatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if _, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("pdfcpu read: %w", err)
	}
	return nil
}

func writeTempPDF(data []byte) (string, func(), error) {
	tmp, err := os.CreateTemp("", "docxtract-*.pdf")
	if err != nil {
		return "", nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}
