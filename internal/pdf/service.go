package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

type PDFService struct {
	extractor ImageExtractor
	maxBytes  int64
}

// NewPDFService wraps an extractor with an upload size limit. maxBytes <= 0
// disables the limit.
func NewPDFService(e ImageExtractor, maxBytes int64) *PDFService {
	return &PDFService{extractor: e, maxBytes: maxBytes}
}

// Extract reads the complete document from r and extracts its images.
func (s *PDFService) Extract(ctx context.Context, r io.Reader) (*Result, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if s.maxBytes > 0 && int64(len(buf)) > s.maxBytes {
		return nil, fmt.Errorf("%w of %s", ErrTooLarge, humanize.IBytes(uint64(s.maxBytes)))
	}

	return s.ExtractBytes(ctx, buf)
}

func (s *PDFService) ExtractBytes(ctx context.Context, buf []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.extractor.Extract(buf)
}
