package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRGB(t *testing.T) {
	samples := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	img, err := NewRGB(2, 2, samples)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, 6, img.Stride)
	assert.Equal(t, color.RGBA{R: 10, G: 11, B: 12, A: 0xff}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(2, 0))

	// The raster owns its samples.
	samples[0] = 99
	assert.Equal(t, uint8(1), img.Pix[0])
}

func TestNewRGBInvalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		samples       []byte
	}{
		{"zero width", 0, 2, nil},
		{"negative height", 2, -1, nil},
		{"short", 2, 2, make([]byte, 11)},
		{"long", 2, 2, make([]byte, 13)},
		{"overflow", 1 << 40, 1 << 40, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRGB(tt.width, tt.height, tt.samples)
			assert.ErrorIs(t, err, ErrImageDecode)
		})
	}
}

func TestRGBToRGBA(t *testing.T) {
	img, err := NewRGB(3, 2, []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9,
		10, 11, 12, 13, 14, 15, 16, 17, 18,
	})
	require.NoError(t, err)

	out := img.RGBA()
	assert.Equal(t, img.Bounds(), out.Bounds())
	for y := range 2 {
		for x := range 3 {
			assert.Equal(t, img.RGBAAt(x, y), out.RGBAAt(x, y))
		}
	}
}

func TestEncodePNG(t *testing.T) {
	img, err := NewRGB(2, 1, []byte{255, 0, 0, 0, 0, 255})
	require.NoError(t, err)

	data, err := EncodePNG(img)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(1, 0).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})
}
