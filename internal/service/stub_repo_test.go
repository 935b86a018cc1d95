package service

import (
	"context"
	"fmt"
	"time"

	"pricetracker/internal/models"
	"pricetracker/internal/repository"
)

// stubRepo is a test-only in-memory repository. Its insert path follows the
// same contract as the gorm store: rows keyed by (market_id, token_id, ts) are
// written at most once, and only rows that land touch the extremes map.
type stubRepo struct {
	games []models.Game

	listErr   error
	insertErr error

	observations map[string]models.PriceObservation
	extremes     map[string]models.PriceExtreme
	insertCalls  int
}

func newStubRepo(games ...models.Game) *stubRepo {
	return &stubRepo{
		games:        games,
		observations: map[string]models.PriceObservation{},
		extremes:     map[string]models.PriceExtreme{},
	}
}

func obsKey(marketID, tokenID string, ts time.Time) string {
	return fmt.Sprintf("%s|%s|%d", marketID, tokenID, ts.UnixNano())
}

func extremeKey(marketID, tokenID string) string {
	return marketID + "|" + tokenID
}

func (s *stubRepo) ListTrackableGames(ctx context.Context, now time.Time, lookahead time.Duration) ([]models.Game, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Game
	for _, g := range s.games {
		if g.Closed {
			continue
		}
		if g.StartTime.After(now.Add(lookahead)) {
			continue
		}
		if g.EndTime != nil && !g.EndTime.After(now) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *stubRepo) InsertPriceObservations(ctx context.Context, items []models.PriceObservation) (int64, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	now := time.Now().UTC()
	var stored int64
	for _, item := range items {
		key := obsKey(item.MarketID, item.TokenID, item.TS)
		if _, ok := s.observations[key]; ok {
			continue
		}
		s.observations[key] = item
		ek := extremeKey(item.MarketID, item.TokenID)
		if existing, ok := s.extremes[ek]; ok {
			repository.ApplyObservation(&existing, item, now)
			s.extremes[ek] = existing
		} else {
			s.extremes[ek] = repository.NewPriceExtreme(item, now)
		}
		stored++
	}
	return stored, nil
}

func (s *stubRepo) GetPriceExtreme(ctx context.Context, marketID, tokenID string) (*models.PriceExtreme, error) {
	if e, ok := s.extremes[extremeKey(marketID, tokenID)]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *stubRepo) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for key, item := range s.observations {
		if item.TS.Before(cutoff) {
			delete(s.observations, key)
			deleted++
		}
	}
	return deleted, nil
}
