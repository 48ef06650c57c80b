package termcat

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// BlendChannel composites one straight-alpha channel over an opaque
// background: out = (1-α)·bg + α·fg. α=0 and α=255 return bg and fg exactly.
func BlendChannel(fg, bg, alpha uint8) uint8 {
	switch alpha {
	case 0:
		return bg
	case 0xff:
		return fg
	}
	a := float64(alpha) / 0xff
	return uint8(math.Round((1-a)*float64(bg) + a*float64(fg)))
}

// Flatten composites img onto an opaque bg and returns a flat RGBA buffer
// whose origin is (0,0). Every pixel of the result has A=255.
func Flatten(img image.Image, bg color.RGBA) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// Opaque sources need no blending, only a copy into the flat buffer
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := dst.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)
			dst.Pix[i+0] = BlendChannel(c.R, bg.R, c.A)
			dst.Pix[i+1] = BlendChannel(c.G, bg.G, c.A)
			dst.Pix[i+2] = BlendChannel(c.B, bg.B, c.A)
			dst.Pix[i+3] = 0xff
		}
	}

	return dst
}
