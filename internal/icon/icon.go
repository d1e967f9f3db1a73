// Package icon renders app icons: it decodes stored images, resizes them onto
// a square transparent canvas, optionally composites them onto a solid
// background and encodes the result as PNG.
package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"regexp"
	"strconv"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Sizes is the catalogue of icon sizes advertised in web manifests.
var Sizes = []int{16, 32, 48, 64, 96, 128, 192, 256, 512}

// Size limits accepted from request paths.
const (
	MinSize = 1
	MaxSize = 1024
)

// FaviconSize is the size the favicon endpoint renders app icons at.
const FaviconSize = 32

var sizePattern = regexp.MustCompile(`^[0-9]+$`)

// ParseSize validates a size path segment.
func ParseSize(s string) (int, error) {
	if !sizePattern.MatchString(s) {
		return 0, fmt.Errorf("icon size %q is not a number", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinSize || n > MaxSize {
		return 0, fmt.Errorf("icon size must be between %d and %d", MinSize, MaxSize)
	}
	return n, nil
}

// Decode decodes a stored icon in any registered format.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon: %w", err)
	}
	return img, nil
}

// Resize scales src to fit a size x size canvas, keeping its aspect ratio.
// The remaining area is transparent. Resampling uses Catmull-Rom (bicubic).
func Resize(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	dw, dh := size, size
	if w > h {
		dh = max(1, (h*size+w/2)/w)
	} else if h > w {
		dw = max(1, (w*size+h/2)/h)
	}

	x0 := (size - dw) / 2
	y0 := (size - dh) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh), src, b, draw.Over, nil)
	return dst
}

// Composite draws img over a solid background of color bg.
func Composite(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
