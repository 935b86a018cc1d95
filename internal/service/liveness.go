package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricetracker/internal/config"
	"pricetracker/internal/db"
	"pricetracker/internal/models"
	"pricetracker/internal/repository"
)

// LivenessService answers two independent questions against the games catalog:
// which outcomes need sampling right now, and how fast sampling should run.
type LivenessService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Config config.LivenessConfig
}

type TrackedOutcome struct {
	MarketID string
	TokenID  string
	Label    *string
}

type TrackedGame struct {
	GameID    string
	Title     string
	StartTime time.Time
	Outcomes  []TrackedOutcome
}

type Frequency struct {
	High      bool
	Reason    string
	NextStart *time.Time
}

// TrackableGames enumerates games worth sampling, in catalog order. Outcomes
// without a token id and games left with no qualifying outcomes are skipped
// with a warning, never an error.
func (s *LivenessService) TrackableGames(ctx context.Context) ([]TrackedGame, error) {
	now := db.NowUTC()
	games, err := s.Repo.ListTrackableGames(ctx, now, s.Config.Lookahead)
	if err != nil {
		return nil, fmt.Errorf("list trackable games: %w", err)
	}

	tracked := make([]TrackedGame, 0, len(games))
	for i := range games {
		game := &games[i]
		markets, err := game.DecodeMarkets()
		if err != nil {
			s.Logger.Warn("skipping game with malformed market tree",
				zap.String("game_id", game.ID),
				zap.Error(err),
			)
			continue
		}
		item := TrackedGame{
			GameID:    game.ID,
			Title:     game.Title,
			StartTime: game.StartTime,
		}
		for _, market := range markets {
			if s.Config.MoneylineOnly && market.Type != models.MarketTypeMoneyline {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.TokenID == nil || *outcome.TokenID == "" {
					s.Logger.Warn("outcome missing token id",
						zap.String("game_id", game.ID),
						zap.String("market_id", market.ConditionID),
					)
					continue
				}
				item.Outcomes = append(item.Outcomes, TrackedOutcome{
					MarketID: market.ConditionID,
					TokenID:  *outcome.TokenID,
					Label:    outcome.Label,
				})
			}
		}
		if len(item.Outcomes) == 0 {
			s.Logger.Warn("game has no trackable outcomes",
				zap.String("game_id", game.ID),
				zap.String("title", game.Title),
			)
			continue
		}
		tracked = append(tracked, item)
	}
	return tracked, nil
}

// Frequency classifies the current sampling cadence: high while any qualifying
// game is underway or starts within the imminent window, low otherwise.
func (s *LivenessService) Frequency(ctx context.Context) (Frequency, error) {
	now := db.NowUTC()
	games, err := s.Repo.ListTrackableGames(ctx, now, s.Config.Lookahead)
	if err != nil {
		return Frequency{}, fmt.Errorf("list trackable games: %w", err)
	}

	var next *time.Time
	activeTitle := ""
	for i := range games {
		game := &games[i]
		if game.StartTime.After(now) {
			if next == nil {
				start := game.StartTime
				next = &start
			}
			continue
		}
		if activeTitle == "" {
			activeTitle = game.Title
		}
	}

	if activeTitle != "" {
		return Frequency{
			High:      true,
			Reason:    fmt.Sprintf("game %q in progress", activeTitle),
			NextStart: next,
		}, nil
	}
	if next == nil {
		return Frequency{Reason: "no upcoming games"}, nil
	}
	until := next.Sub(now)
	if until <= s.Config.ImminentWindow {
		return Frequency{
			High:      true,
			Reason:    fmt.Sprintf("next game starts in %s", until.Round(time.Second)),
			NextStart: next,
		}, nil
	}
	return Frequency{
		Reason:    fmt.Sprintf("next game starts in %s", until.Round(time.Second)),
		NextStart: next,
	}, nil
}
