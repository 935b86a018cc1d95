package repository

import (
	"context"
	"time"

	"pricetracker/internal/models"
)

// Repository is the storage surface the tracker needs: read-only access to the
// games catalog and read-write access to the price relations it owns.
type Repository interface {
	// ListTrackableGames returns games that are not closed, have not ended, and
	// start before now+lookahead, ordered by start time ascending.
	ListTrackableGames(ctx context.Context, now time.Time, lookahead time.Duration) ([]models.Game, error)

	// InsertPriceObservations persists a batch, skipping rows whose
	// (market_id, token_id, ts) key already exists, and folds every row that
	// actually landed into its extremes record. Returns the number of rows
	// inserted. Re-delivering the same batch is a no-op.
	InsertPriceObservations(ctx context.Context, items []models.PriceObservation) (int64, error)

	GetPriceExtreme(ctx context.Context, marketID, tokenID string) (*models.PriceExtreme, error)

	DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
