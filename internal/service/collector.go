package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pricetracker/internal/db"
	"pricetracker/internal/models"
	"pricetracker/internal/repository"
)

// PriceFetcher is what the collector needs from the quote client.
type PriceFetcher interface {
	GetSellPrice(ctx context.Context, tokenID string) (decimal.Decimal, error)
}

// CollectorService performs one full collection pass: enumerate live outcomes,
// fetch each price sequentially under the rate limit, persist one batch.
type CollectorService struct {
	Repo     repository.Repository
	Liveness *LivenessService
	Quotes   PriceFetcher
	Logger   *zap.Logger

	// RequestInterval is slept before every quote request, capping throughput
	// regardless of observed latency.
	RequestInterval time.Duration
}

type RunSummary struct {
	RunID          string
	GamesProcessed int
	Requests       int
	Successes      int
	Failures       int
	Stored         int64
}

var priceOne = decimal.NewFromInt(1)

// Run samples every trackable outcome once. All observations of a run share a
// single timestamp, so consumers see the batch as one logical as-of snapshot.
// Per-outcome fetch failures are counted, not raised; only enumeration or
// batch-write failures propagate.
func (s *CollectorService) Run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}

	games, err := s.Liveness.TrackableGames(ctx)
	if err != nil {
		return summary, err
	}
	if len(games) == 0 {
		s.Logger.Info("no trackable games, skipping run",
			zap.String("run_id", summary.RunID))
		return summary, nil
	}

	ts := db.NowUTC()
	var batch []models.PriceObservation
	for _, game := range games {
		summary.GamesProcessed++
		for _, outcome := range game.Outcomes {
			if err := sleep(ctx, s.RequestInterval); err != nil {
				return summary, err
			}
			price, err := s.Quotes.GetSellPrice(ctx, outcome.TokenID)
			summary.Requests++
			if err != nil {
				summary.Failures++
				s.Logger.Warn("price fetch failed",
					zap.String("run_id", summary.RunID),
					zap.String("game_id", game.GameID),
					zap.String("market_id", outcome.MarketID),
					zap.String("token_id", outcome.TokenID),
					zap.Error(err),
				)
				continue
			}
			if price.LessThan(decimal.Zero) || price.GreaterThan(priceOne) {
				// Stored as received; the store never silently corrects data.
				s.Logger.Warn("price outside [0,1]",
					zap.String("run_id", summary.RunID),
					zap.String("token_id", outcome.TokenID),
					zap.String("price", price.String()),
				)
			}
			summary.Successes++
			batch = append(batch, models.PriceObservation{
				MarketID: outcome.MarketID,
				TokenID:  outcome.TokenID,
				TS:       ts,
				Outcome:  outcome.Label,
				Price:    price,
				Source:   models.SourceREST,
			})
			s.Logger.Debug("price sampled",
				zap.String("run_id", summary.RunID),
				zap.String("token_id", outcome.TokenID),
				zap.String("price", price.String()),
			)
		}
	}

	if len(batch) > 0 {
		stored, err := s.Repo.InsertPriceObservations(ctx, batch)
		if err != nil {
			return summary, fmt.Errorf("store price batch: %w", err)
		}
		summary.Stored = stored
	}

	s.Logger.Info("collection run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("games", summary.GamesProcessed),
		zap.Int("requests", summary.Requests),
		zap.Int("successes", summary.Successes),
		zap.Int("failures", summary.Failures),
		zap.Int64("stored", summary.Stored),
		zap.Time("ts", ts),
	)
	return summary, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
