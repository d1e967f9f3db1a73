package icon

import (
	"image"
	"image/color"
	"sync"
)

// Platform default icon colors.
var (
	defaultBackground = color.NRGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}
	defaultForeground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const defaultSourceSize = 512

// Default returns the platform default icon at its source resolution.
// The returned image must not be modified.
var Default = sync.OnceValue(func() image.Image {
	return drawDefault(defaultSourceSize)
})

// DefaultFavicon returns the platform default favicon as an ICO file.
var DefaultFavicon = sync.OnceValue(func() []byte {
	png32, err := EncodePNG(Resize(Default(), FaviconSize))
	if err != nil {
		panic(err)
	}
	ico, err := EncodeICO(png32)
	if err != nil {
		panic(err)
	}
	return ico
})

// drawDefault paints a rounded square with a white frame and a filled
// header bar, the generic "app window" glyph.
func drawDefault(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	radius := size * 3 / 16
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if insideRoundedSquare(x, y, size, radius) {
				img.SetNRGBA(x, y, defaultBackground)
			}
		}
	}

	lo, hi := size*5/16, size*11/16
	stroke := max(1, size/32)
	header := lo + size/10
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			edge := x < lo+stroke || x >= hi-stroke || y < lo+stroke || y >= hi-stroke
			if edge || y < header {
				img.SetNRGBA(x, y, defaultForeground)
			}
		}
	}
	return img
}

func insideRoundedSquare(x, y, size, r int) bool {
	cx, cy := x, y
	switch {
	case x < r:
		cx = r
	case x >= size-r:
		cx = size - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= size-r:
		cy = size - r - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
