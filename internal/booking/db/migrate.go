package db

import (
	"context"
	"log"

	"venue-booking/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the booking tables from the bun models and seeds the venue
// directory when it is empty. Production schemas go through the SQL
// migrations runner instead; this is the dev-bootstrap path.
func Migrate(db *bun.DB) {
	ctx := context.Background()

	tables := []interface{}{
		(*models.Venue)(nil),
		(*models.Event)(nil),
		(*models.EventCollaborator)(nil),
	}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("create table failed for %T: %v", m, err)
		}
	}

	count, err := db.NewSelect().Model((*models.Venue)(nil)).Count(ctx)
	if err != nil {
		log.Fatalf("venue count failed: %v", err)
	}
	if count > 0 {
		return
	}

	venues := []models.Venue{
		{ID: "venue-aud", Name: "Main Auditorium", Location: "Block A", Capacity: 400, Resources: []string{"projector", "stage", "sound"}, Available: true},
		{ID: "venue-sem1", Name: "Seminar Hall 1", Location: "Block B", Capacity: 80, Resources: []string{"projector", "whiteboard"}, Available: true},
		{ID: "venue-lab3", Name: "Computer Lab 3", Location: "Block C", Capacity: 40, Resources: []string{"workstations"}, Available: false},
	}
	if _, err := db.NewInsert().Model(&venues).Exec(ctx); err != nil {
		log.Fatalf("venue seed failed: %v", err)
	}

	log.Println("booking tables created, venue directory seeded")
}
