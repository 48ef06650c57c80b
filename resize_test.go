package termcat

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8((x + y) % 255),
				A: 255,
			})
		}
	}
	return img
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		bounds         Bounds
		expectedWidth  int
		expectedHeight int
	}{
		{
			name:           "already fits",
			width:          400,
			height:         300,
			bounds:         DefaultBounds(),
			expectedWidth:  400,
			expectedHeight: 300,
		},
		{
			name:           "exactly the bounds",
			width:          800,
			height:         480,
			bounds:         DefaultBounds(),
			expectedWidth:  800,
			expectedHeight: 480,
		},
		{
			name:           "wide image limited by width",
			width:          1600,
			height:         400,
			bounds:         DefaultBounds(),
			expectedWidth:  800,
			expectedHeight: 200,
		},
		{
			name:           "tall image limited by height",
			width:          600,
			height:         960,
			bounds:         DefaultBounds(),
			expectedWidth:  300,
			expectedHeight: 480,
		},
		{
			name:           "fractional result truncates",
			width:          1000,
			height:         333,
			bounds:         Bounds{MaxWidth: 100, MaxHeight: 100},
			expectedWidth:  100,
			expectedHeight: 33,
		},
		{
			name:           "extreme aspect clamps to one pixel",
			width:          10000,
			height:         1,
			bounds:         Bounds{MaxWidth: 100, MaxHeight: 100},
			expectedWidth:  100,
			expectedHeight: 1,
		},
		{
			name:           "only height too large",
			width:          100,
			height:         1000,
			bounds:         Bounds{MaxWidth: 800, MaxHeight: 100},
			expectedWidth:  10,
			expectedHeight: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitDimensions(tt.width, tt.height, tt.bounds)
			assert.Equal(t, tt.expectedWidth, w, "width")
			assert.Equal(t, tt.expectedHeight, h, "height")
		})
	}
}

func TestResizeToBoundsNoUpscale(t *testing.T) {
	img := createTestImage(20, 10)

	resized := ResizeToBounds(img, DefaultBounds())

	assert.Same(t, img.(*image.RGBA), resized.(*image.RGBA), "fitting image must be returned as is")
}

func TestResizeToBounds(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		bounds        Bounds
	}{
		{name: "landscape", width: 1600, height: 900, bounds: DefaultBounds()},
		{name: "portrait", width: 500, height: 2000, bounds: DefaultBounds()},
		{name: "square", width: 1000, height: 1000, bounds: Bounds{MaxWidth: 64, MaxHeight: 64}},
		{name: "tiny bounds", width: 300, height: 200, bounds: Bounds{MaxWidth: 1, MaxHeight: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resized := ResizeToBounds(createTestImage(tt.width, tt.height), tt.bounds)
			b := resized.Bounds()

			assert.True(t, tt.bounds.Contains(b.Dx(), b.Dy()), "got %dx%d", b.Dx(), b.Dy())
			assert.GreaterOrEqual(t, b.Dx(), 1)
			assert.GreaterOrEqual(t, b.Dy(), 1)

			wantW, wantH := FitDimensions(tt.width, tt.height, tt.bounds)
			assert.Equal(t, wantW, b.Dx())
			assert.Equal(t, wantH, b.Dy())

			// aspect ratio kept to within one pixel per axis
			ratio := min(float64(tt.bounds.MaxWidth)/float64(tt.width), float64(tt.bounds.MaxHeight)/float64(tt.height))
			assert.InDelta(t, float64(tt.width)*ratio, float64(b.Dx()), 1.0)
			assert.InDelta(t, float64(tt.height)*ratio, float64(b.Dy()), 1.0)
		})
	}
}

func BenchmarkResizeToBounds(b *testing.B) {
	img := createTestImage(1920, 1080)
	bounds := DefaultBounds()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ResizeToBounds(img, bounds)
	}
}
