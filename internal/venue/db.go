package venue

import (
	"context"
	"database/sql"
	"errors"

	"venue-booking/internal/models"

	"github.com/uptrace/bun"
)

// DB is the read-only venue directory. The booking core resolves venue ids
// through it and never writes to it.
type DB struct {
	Bun *bun.DB
}

// GetVenueByID → fetch one venue, nil when it does not exist
func (d *DB) GetVenueByID(id string) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// ListVenues → every venue currently marked bookable
func (d *DB) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Where("available = ?", true).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}
