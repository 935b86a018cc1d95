package repository

import (
	"time"

	"pricetracker/internal/models"
)

// NewPriceExtreme seeds the derived record from the first observation ever
// written for a key.
func NewPriceExtreme(obs models.PriceObservation, now time.Time) models.PriceExtreme {
	return models.PriceExtreme{
		MarketID:     obs.MarketID,
		TokenID:      obs.TokenID,
		Outcome:      obs.Outcome,
		LowestPrice:  obs.Price,
		LowestAt:     obs.TS,
		HighestPrice: obs.Price,
		HighestAt:    obs.TS,
		CurrentPrice: obs.Price,
		CurrentAt:    obs.TS,
		FirstSeenAt:  obs.TS,
		UpdatedAt:    now,
	}
}

// ApplyObservation folds one inserted observation into an existing extremes
// record. Min/max compare strictly against the stored extreme, never against
// sibling rows, so the result does not depend on row order within a batch.
// Current is overwritten unconditionally.
func ApplyObservation(e *models.PriceExtreme, obs models.PriceObservation, now time.Time) {
	if obs.Price.LessThan(e.LowestPrice) {
		e.LowestPrice = obs.Price
		e.LowestAt = obs.TS
	}
	if obs.Price.GreaterThan(e.HighestPrice) {
		e.HighestPrice = obs.Price
		e.HighestAt = obs.TS
	}
	e.CurrentPrice = obs.Price
	e.CurrentAt = obs.TS
	if e.Outcome == nil && obs.Outcome != nil {
		e.Outcome = obs.Outcome
	}
	e.UpdatedAt = now
}
