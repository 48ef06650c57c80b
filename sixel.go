package termcat

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/mattn/go-sixel"
	"github.com/soniakeys/quant/median"
)

// Sixel palette sizes in drawable colors
const (
	defaultSixelColors = 254 // go-sixel's own default
	maxSixelColors     = 255
)

// SixelEncoder transmits images as a sixel device control string. Pixels are
// flattened onto Background first since sixel has no alpha channel.
type SixelEncoder struct {
	Colors     int // drawable colors (2-256, capped at 255); 0 uses the encoder default
	Background color.RGBA
	Dither     bool
	Tmux       bool
}

// Protocol returns the protocol type
func (r *SixelEncoder) Protocol() Protocol {
	return Sixel
}

// Encode writes img as a single sixel DCS string followed by a newline.
// Nothing is written when encoding fails.
func (r *SixelEncoder) Encode(w io.Writer, img image.Image) error {
	out, err := r.Render(img)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write sixel: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write sixel: %w", err)
	}
	return nil
}

// Render returns the complete sixel sequence for img
func (r *SixelEncoder) Render(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	bg := r.Background
	bg.A = 0xff
	var processed image.Image = Flatten(img, bg)

	// go-sixel quantizes to Colors-1 entries and only reuses a paletted
	// image with fewer than Colors entries
	limit := r.paletteLimit()

	var buf bytes.Buffer
	enc := sixel.NewEncoder(&buf)
	enc.Colors = limit + 1

	if r.Dither {
		processed = r.applyOptimizedPalette(processed, limit)
		enc.Dither = false // already dithered onto the optimized palette
	}

	if err := enc.Encode(processed); err != nil {
		return nil, fmt.Errorf("failed to encode sixel: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("sixel encoding produced empty output")
	}

	out := buf.Bytes()
	if r.Tmux {
		out = wrapTmuxPassthrough(out)
	}
	return out, nil
}

// paletteLimit is the number of drawable colors: Colors clamped to 2..255,
// or defaultSixelColors when unset.
func (r *SixelEncoder) paletteLimit() int {
	if r.Colors <= 0 {
		return defaultSixelColors
	}
	return min(max(r.Colors, 2), maxSixelColors)
}

// applyOptimizedPalette builds a median cut palette of at most limit colors
// and dithers img onto it with Stucki error diffusion.
func (r *SixelEncoder) applyOptimizedPalette(img image.Image, limit int) image.Image {
	if limit < 2 || limit > maxSixelColors {
		limit = maxSixelColors
	}

	palette := median.Quantizer(limit).Palette(img).ColorPalette()
	if len(palette) == 0 {
		return img
	}

	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.Stucki

	return ditherer.DitherPaletted(img)
}
