package ai

import (
	"context"
	"encoding/base64"
)

// EncodedImage is an image file ready to be sent to a model.
type EncodedImage struct {
	MimeType string
	Data     []byte
}

func (i EncodedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL renders the image as a data: URL for chat APIs that accept
// image_url parts.
func (i EncodedImage) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64()
}

// VisionModel turns a prompt and a set of images into text.
type VisionModel interface {
	// Name returns the backend name, e.g. "openai" or "llama".
	Name() string

	// Describe sends the prompt and images in one request. Images are in
	// the order they should be referenced by the prompt.
	Describe(ctx context.Context, prompt string, images []EncodedImage) (string, error)

	// IsHealthy reports whether the backend answers.
	IsHealthy(ctx context.Context) bool
}

// InlinePlaceholders is implemented by backends that expect images to be
// referenced from the prompt text. n is 1-based.
type InlinePlaceholders interface {
	Placeholder(n int) string
}
