package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pricetracker/internal/models"
	"pricetracker/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListTrackableGames(ctx context.Context, now time.Time, lookahead time.Duration) ([]models.Game, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var games []models.Game
	if err := s.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("closed = ?", false).
		Where("start_time <= ?", now.Add(lookahead)).
		Where("end_time IS NULL OR end_time > ?", now).
		Order("start_time asc").
		Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// InsertPriceObservations writes the batch in one transaction. Each row is
// inserted with a do-nothing conflict target on (market_id, token_id, ts);
// the extremes record is touched only for rows that actually landed, under a
// row lock, so insert and aggregate update commit or roll back together.
func (s *Store) InsertPriceObservations(ctx context.Context, items []models.PriceObservation) (int64, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	var stored int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for i := range items {
			res := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "market_id"},
					{Name: "token_id"},
					{Name: "ts"},
				},
				DoNothing: true,
			}).Create(&items[i])
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Re-delivered row, aggregate already reflects it.
				continue
			}
			if err := upsertExtremeTx(tx, items[i], now); err != nil {
				return err
			}
			stored++
		}
		return nil
	})
	return stored, err
}

func upsertExtremeTx(tx *gorm.DB, obs models.PriceObservation, now time.Time) error {
	var current models.PriceExtreme
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ? AND token_id = ?", obs.MarketID, obs.TokenID).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		next := repository.NewPriceExtreme(obs, now)
		return tx.Create(&next).Error
	}
	if err != nil {
		return err
	}
	repository.ApplyObservation(&current, obs, now)
	return tx.Save(&current).Error
}

func (s *Store) GetPriceExtreme(ctx context.Context, marketID, tokenID string) (*models.PriceExtreme, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PriceExtreme
	err := s.db.WithContext(ctx).
		Where("market_id = ? AND token_id = ?", marketID, tokenID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("ts < ?", cutoff).
		Delete(&models.PriceObservation{})
	return res.RowsAffected, res.Error
}
