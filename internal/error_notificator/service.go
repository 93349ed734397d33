package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

// Service delivers through infra and falls back to the log when that fails.
type Service struct {
	infra    Notificator
	fallback *LogInfra
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{infra: infra, fallback: NewLogInfra(log)}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	if s.infra == nil {
		return s.fallback.Notify(ctx, err, details)
	}
	if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
		s.fallback.log.Warn("admin notification failed", zap.Error(sendErr))
		return s.fallback.Notify(ctx, err, details)
	}
	return nil
}
