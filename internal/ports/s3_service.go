package ports

import (
	"context"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

// ArchiveService stores extracted images next to the request that produced
// them.
type ArchiveService interface {
	ObjectKey(requestID string, img pdf.Image) string
	SaveImages(ctx context.Context, requestID string, images []pdf.Image) ([]string, error)
}
