package pdfdoc

import "image"

const (
	// gridSamples is the number of sample points per axis on the rendered
	// page. The check stays a coarse sampled probe on purpose: a
	// full-resolution scan costs more than it is worth at this stage.
	gridSamples = 20

	// nearWhite is the per-channel floor above which a pixel still counts
	// as blank page background.
	nearWhite = 240
)

// pageHasContent samples a coarse grid over a low-resolution page render and
// reports whether any sampled pixel is not near-white. It trades recall for
// speed.
func pageHasContent(img image.Image) bool {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return false
	}

	stepX := max(1, w/gridSamples)
	stepY := max(1, h/gridSamples)

	for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
		for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels.
			if r>>8 <= nearWhite || g>>8 <= nearWhite || b>>8 <= nearWhite {
				return true
			}
		}
	}
	return false
}
