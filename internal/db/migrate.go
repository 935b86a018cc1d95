package db

import (
	"pricetracker/internal/models"
)

// AutoMigrate creates the relations the tracker owns. The games catalog is
// maintained externally and is intentionally not migrated here.
func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.PriceObservation{},
		&models.PriceExtreme{},
	)
}
