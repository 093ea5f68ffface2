package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Renderer rasterizes PDF pages to PNG files via pdftoppm. Low DPI is used
// for the cheap page-content probe, high DPI only for pages that need OCR.
type Renderer struct {
	pdftoppm string
	runner   Runner
}

func NewRenderer(pdftoppm string) *Renderer {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	return &Renderer{pdftoppm: pdftoppm, runner: ExecRunner{}}
}

func NewRendererWithRunner(pdftoppm string, runner Runner) *Renderer {
	return &Renderer{pdftoppm: pdftoppm, runner: runner}
}

// RenderPages renders every page of the PDF at the given DPI into a temp
// directory and returns the generated PNG paths in page order. The cleanup
// function removes the directory.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath string, dpi int) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "docxtract-render-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.pdftoppm, "-r", fmt.Sprintf("%d", dpi), "-png", pdfPath, prefix)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm produced no pages")
	}
	return matches, cleanup, nil
}
