package models

import (
	"github.com/uptrace/bun"
)

// Venue is read-only to the booking core; rows are seeded by the directory owner.
type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID        string   `bun:"id,pk" json:"id"`
	Name      string   `bun:"name,notnull" json:"name"`
	Location  string   `bun:"location" json:"location"`
	Capacity  int      `bun:"capacity" json:"capacity"`
	Resources []string `bun:"resources" json:"resources"`
	Available bool     `bun:"available" json:"available"`
}
