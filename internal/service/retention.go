package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricetracker/internal/db"
	"pricetracker/internal/repository"
)

// RetentionService prunes old observations on a schedule. It sits outside the
// collection pipeline, which itself never deletes; extremes are kept forever.
type RetentionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	MaxAge time.Duration
}

func (s *RetentionService) Prune(ctx context.Context) error {
	if s.MaxAge <= 0 {
		return nil
	}
	cutoff := db.NowUTC().Add(-s.MaxAge)
	deleted, err := s.Repo.DeleteObservationsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune observations: %w", err)
	}
	if deleted > 0 {
		s.Logger.Info("pruned old price observations",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
