package domain

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/pdf_vision/internal/error_notificator"
	"github.com/Vovarama1992/pdf_vision/internal/ports"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

type recordService struct {
	repo     ports.RecordRepo
	notifier error_notificator.Notificator
}

func NewRecordService(repo ports.RecordRepo, n error_notificator.Notificator) ports.RecordService {
	return &recordService{
		repo:     repo,
		notifier: n,
	}
}

func (s *recordService) Add(ctx context.Context, rec ports.Record) (int64, error) {
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		if s.notifier != nil {
			s.notifier.Notify(ctx, err,
				fmt.Sprintf("Failed to write request record: request=%s", rec.RequestID))
		}
		return 0, err
	}
	return id, nil
}

// List clamps limit into [1, MaxListLimit]; zero or negative means the
// default.
func (s *recordService) List(ctx context.Context, limit int) ([]ports.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	return s.repo.List(ctx, limit)
}
