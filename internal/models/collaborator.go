package models

import (
	"github.com/uptrace/bun"
)

type CollaborationStatus string

const (
	CollaborationPending  CollaborationStatus = "pending"
	CollaborationAccepted CollaborationStatus = "accepted"
)

// EventCollaborator is a co-hosting club invited onto an event. Acceptance is
// informational and never gates the event's own approval.
type EventCollaborator struct {
	bun.BaseModel `bun:"table:event_collaborators"`

	ID      string              `bun:"id,pk" json:"id"`
	EventID string              `bun:"event_id,notnull" json:"event_id"`
	ClubID  string              `bun:"club_id,notnull" json:"club_id"`
	Role    string              `bun:"role" json:"role"`
	Status  CollaborationStatus `bun:"status,notnull" json:"status"`
}

type CollaboratorDraft struct {
	ClubID string `json:"club_id"`
	Role   string `json:"role"`
}
