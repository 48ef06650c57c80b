package termcat

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "github.com/spakin/netpbm"
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image with any of the registered decoders
// (png, jpeg, gif, bmp, tiff, webp, netpbm and qoi).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, format, fmt.Errorf("failed to decode image: %s image has no pixels (%dx%d)", format, b.Dx(), b.Dy())
	}
	return img, format, nil
}
