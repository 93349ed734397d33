package pdf

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
)

// RGB is an in-memory image with packed 8-bit R, G, B samples, row-major
// and without row padding.
type RGB struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

var _ image.Image = (*RGB)(nil)

// NewRGB interprets samples as a width x height raster with three bytes per
// pixel. The sample count must match exactly.
func NewRGB(width, height int, samples []byte) (*RGB, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrImageDecode, width, height)
	}
	if width > math.MaxInt/3/height {
		return nil, fmt.Errorf("%w: dimensions %dx%d overflow", ErrImageDecode, width, height)
	}
	want := width * height * 3
	if len(samples) != want {
		return nil, fmt.Errorf("%w: %d sample bytes, want %d for %dx%d RGB",
			ErrImageDecode, len(samples), want, width, height)
	}

	return &RGB{
		Pix:    slices.Clone(samples),
		Stride: width * 3,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

func (p *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 0xff}
}

// PixOffset returns the index of the first sample of the pixel at (x, y).
func (p *RGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *RGB) Width() int  { return p.Rect.Dx() }
func (p *RGB) Height() int { return p.Rect.Dy() }

// RGBA copies the raster into an opaque *image.RGBA.
func (p *RGB) RGBA() *image.RGBA {
	out := image.NewRGBA(p.Rect)
	w, h := p.Rect.Dx(), p.Rect.Dy()
	for y := range h {
		src := p.Pix[y*p.Stride : y*p.Stride+w*3]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := range w {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return out
}
