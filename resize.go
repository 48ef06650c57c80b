package termcat

import (
	"image"

	"github.com/nfnt/resize"
)

// Default image bounds in pixels
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 480
)

// Bounds is the largest pixel box an image may occupy once rendered
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

// DefaultBounds returns the 800x480 box used when nothing else is configured
func DefaultBounds() Bounds {
	return Bounds{MaxWidth: DefaultMaxWidth, MaxHeight: DefaultMaxHeight}
}

// Contains reports whether a w x h image already fits
func (b Bounds) Contains(w, h int) bool {
	return w <= b.MaxWidth && h <= b.MaxHeight
}

// FitDimensions computes the size a w x h image is scaled to so that it fits
// inside b while keeping its aspect ratio. Images that already fit keep their
// size; neither returned dimension is ever below 1.
func FitDimensions(w, h int, b Bounds) (int, int) {
	if b.Contains(w, h) || w <= 0 || h <= 0 {
		return w, h
	}

	ratioW := float64(b.MaxWidth) / float64(w)
	ratioH := float64(b.MaxHeight) / float64(h)
	ratio := min(ratioW, ratioH)

	newW := max(int(float64(w)*ratio), 1)
	newH := max(int(float64(h)*ratio), 1)

	return newW, newH
}

// ResizeToBounds downscales img with a Lanczos3 filter so it fits inside b.
// Images that already fit are returned as is; nothing is ever upscaled.
func ResizeToBounds(img image.Image, b Bounds) image.Image {
	if img == nil {
		return nil
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if b.Contains(srcW, srcH) {
		return img
	}

	targetW, targetH := FitDimensions(srcW, srcH, b)

	return resize.Resize(uint(targetW), uint(targetH), img, resize.Lanczos3)
}
