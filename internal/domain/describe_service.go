package domain

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/pdf_vision/internal/pdf"
	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

const (
	SourceHTTP     = "http"
	SourceTelegram = "telegram"
	SourceCLI      = "cli"
)

var ErrNoImages = errors.New("no images found in pdf")

// Extractor is the part of pdf.PDFService the pipeline needs.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (*pdf.Result, error)
}

// Describer is the part of ai.AiService the pipeline needs.
type Describer interface {
	Describe(ctx context.Context, prompt string, images []image.Image) (string, error)
	ModelName() string
}

type DescribeRequest struct {
	Source   string
	FileName string
	Prompt   string
	PDF      io.Reader
}

type DescribeResult struct {
	RequestID    string   `json:"request_id"`
	Response     string   `json:"response"`
	Images       int      `json:"images"`
	Skipped      int      `json:"skipped"`
	Warnings     []string `json:"warnings"`
	ArchivedURLs []string `json:"archived"`
}

type DescribeService struct {
	extractor Extractor
	model     Describer
	archive   ports.ArchiveService // optional
	records   ports.RecordService  // optional
	log       *zap.Logger
}

func NewDescribeService(
	extractor Extractor,
	model Describer,
	archive ports.ArchiveService,
	records ports.RecordService,
	log *zap.Logger,
) *DescribeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DescribeService{
		extractor: extractor,
		model:     model,
		archive:   archive,
		records:   records,
		log:       log,
	}
}

// Describe extracts the images of req.PDF and asks the model about them.
// Archiving and record keeping failures are logged and do not fail the
// request.
func (s *DescribeService) Describe(ctx context.Context, req DescribeRequest) (*DescribeResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := s.log.With(
		zap.String("request_id", requestID),
		zap.String("source", req.Source),
		zap.String("file", req.FileName),
	)

	extracted, err := s.extractor.Extract(ctx, req.PDF)
	if err != nil {
		return nil, err
	}

	sum := extracted.Summary()
	res := &DescribeResult{
		RequestID:    requestID,
		Images:       sum.Extracted,
		Skipped:      sum.Skipped,
		Warnings:     make([]string, 0, len(extracted.Warnings)),
		ArchivedURLs: []string{},
	}
	for _, w := range extracted.Warnings {
		res.Warnings = append(res.Warnings, w.String())
	}

	if len(extracted.Images) == 0 {
		log.Info("no images in pdf", zap.Int("skipped", sum.Skipped))
		return res, ErrNoImages
	}

	images := make([]image.Image, len(extracted.Images))
	for i, img := range extracted.Images {
		images[i] = img.RGB
	}

	reply, err := s.model.Describe(ctx, req.Prompt, images)
	if err != nil {
		return nil, fmt.Errorf("describe images: %w", err)
	}
	res.Response = reply

	if s.archive != nil {
		urls, err := s.archive.SaveImages(ctx, requestID, extracted.Images)
		if err != nil {
			log.Warn("archiving images failed", zap.Int("saved", len(urls)), zap.Error(err))
		}
		res.ArchivedURLs = append(res.ArchivedURLs, urls...)
	}

	if s.records != nil {
		_, err := s.records.Add(ctx, ports.Record{
			RequestID: requestID,
			Source:    req.Source,
			FileName:  req.FileName,
			Prompt:    strings.TrimSpace(req.Prompt),
			Images:    res.Images,
			Skipped:   res.Skipped,
			Response:  reply,
			Model:     s.model.ModelName(),
			CreatedAt: start,
		})
		if err != nil {
			log.Warn("saving request record failed", zap.Error(err))
		}
	}

	log.Info("pdf described",
		zap.Int("images", res.Images),
		zap.Int("skipped", res.Skipped),
		zap.Int("archived", len(res.ArchivedURLs)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
