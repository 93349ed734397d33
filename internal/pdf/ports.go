package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrImageDecode marks an image XObject whose metadata or samples do not
	// yield an RGB raster of the declared size.
	ErrImageDecode = errors.New("image decode failed")

	// ErrUnsupportedColorModel marks an image XObject stored in a color
	// space, bit depth or codec other than raw 8-bit RGB.
	ErrUnsupportedColorModel = errors.New("unsupported color model")

	// ErrTooLarge is returned by Service when an upload exceeds its limit.
	ErrTooLarge = errors.New("pdf exceeds size limit")
)

// MalformedInputError is returned when the buffer cannot be parsed as a PDF
// at all. No partial result accompanies it.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return "malformed pdf: " + e.Err.Error()
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Image is a decoded raster found on a page. Page is 1-based and Name is the
// key of the XObject in the page's resource dictionary.
type Image struct {
	*RGB
	Page int
	Name string
}

// Warning records an image XObject that was skipped.
type Warning struct {
	Page int
	Name string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d, %s: %v", w.Page, w.Name, w.Err)
}

// Summary is the extraction outcome callers surface in logs and responses.
type Summary struct {
	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`
}

type Result struct {
	Images   []Image
	Warnings []Warning
}

func (r *Result) Summary() Summary {
	return Summary{Extracted: len(r.Images), Skipped: len(r.Warnings)}
}

// ImageExtractor turns a complete PDF buffer into its embedded images.
type ImageExtractor interface {
	Extract(data []byte) (*Result, error)
}
