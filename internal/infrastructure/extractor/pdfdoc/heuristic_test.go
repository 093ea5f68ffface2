package pdfdoc

import (
	"image"
	"image/color"
	"testing"
)

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPageHasContentBlankPage(t *testing.T) {
	if pageHasContent(uniformImage(120, 160, color.White)) {
		t.Fatalf("pure white page must be blank")
	}
	if pageHasContent(uniformImage(120, 160, color.RGBA{R: 250, G: 250, B: 250, A: 255})) {
		t.Fatalf("near-white page must be blank")
	}
}

func TestPageHasContentDetectsDarkRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 160))
	for x := 0; x < 120; x++ {
		for y := 0; y < 160; y++ {
			img.Set(x, y, color.White)
		}
	}
	// A block comfortably larger than the sampling step.
	for x := 40; x < 80; x++ {
		for y := 40; y < 100; y++ {
			img.Set(x, y, color.Black)
		}
	}
	if !pageHasContent(img) {
		t.Fatalf("page with a dark block must have content")
	}
}

func TestPageHasContentEmptyImage(t *testing.T) {
	if pageHasContent(image.NewRGBA(image.Rect(0, 0, 0, 0))) {
		t.Fatalf("zero-size image must be blank")
	}
}

func TestPageHasContentTinyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.Black)
		}
	}
	if !pageHasContent(img) {
		t.Fatalf("image smaller than the grid must still be sampled")
	}
}
