package pdf

import (
	"bytes"
	"image"
	"image/png"
)

// EncodePNG encodes img losslessly. *RGB rasters are widened to RGBA first
// so the encoder takes its fast path.
func EncodePNG(img image.Image) ([]byte, error) {
	if rgb, ok := img.(*RGB); ok {
		img = rgb.RGBA()
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
