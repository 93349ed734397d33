package domain

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

type archiveService struct {
	client ports.S3Client
	now    func() time.Time
}

func NewArchiveService(client ports.S3Client) ports.ArchiveService {
	return &archiveService{client: client, now: time.Now}
}

// ObjectKey is <date>/<request id>/page-<n>-<resource name>.png.
func (s *archiveService) ObjectKey(requestID string, img pdf.Image) string {
	date := s.now().UTC().Format("2006-01-02")
	name := strings.Trim(path.Base("/"+img.Name), "/")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%s/%s/page-%d-%s.png", date, requestID, img.Page, name)
}

// SaveImages uploads every image as PNG and returns the public URLs in
// image order. It stops at the first failure.
func (s *archiveService) SaveImages(ctx context.Context, requestID string, images []pdf.Image) ([]string, error) {
	if requestID == "" {
		return nil, fmt.Errorf("requestID required")
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		data, err := pdf.EncodePNG(img.RGB)
		if err != nil {
			return urls, fmt.Errorf("encode page %d %s: %w", img.Page, img.Name, err)
		}

		url, err := s.client.PutObject(ctx, s.ObjectKey(requestID, img), bytes.NewReader(data), int64(len(data)), "image/png")
		if err != nil {
			return urls, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
