package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusApproved  EventStatus = "approved"
	StatusRejected  EventStatus = "rejected"
	StatusCompleted EventStatus = "completed"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string      `bun:"id,pk" json:"id"`
	Name         string      `bun:"name,notnull" json:"name"`
	Description  string      `bun:"description" json:"description"`
	OrganizerID  string      `bun:"organizer_id,notnull" json:"organizer_id"`
	ClubID       string      `bun:"club_id,nullzero" json:"club_id,omitempty"`
	VenueID      string      `bun:"venue_id,notnull" json:"venue_id"`
	Date         time.Time   `bun:"date,notnull" json:"date"`
	StartMinute  int         `bun:"start_minute,notnull" json:"start_minute"`
	EndMinute    int         `bun:"end_minute,notnull" json:"end_minute"`
	Budget       int         `bun:"budget" json:"budget"`
	Capacity     int         `bun:"capacity,notnull" json:"capacity"`
	Attendees    []string    `bun:"attendees" json:"attendees"`
	Status       EventStatus `bun:"status,notnull" json:"status"`
	AdminComment string      `bun:"admin_comment,nullzero" json:"admin_comment,omitempty"`
	ReceiptRef   string      `bun:"receipt_ref,nullzero" json:"receipt_ref,omitempty"`
	Version      int64       `bun:"version,notnull" json:"-"`
	CreatedAt    time.Time   `bun:"created_at,notnull" json:"created_at"`
}

// HasAttendee reports whether memberID is already on the attendee list.
func (e *Event) HasAttendee(memberID string) bool {
	for _, id := range e.Attendees {
		if id == memberID {
			return true
		}
	}
	return false
}

type ProposalRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	VenueID       string              `json:"venue_id"`
	ClubID        string              `json:"club_id"`
	Date          string              `json:"date"`  // "2006-01-02"
	Start         string              `json:"start"` // "15:04"
	End           string              `json:"end"`
	Budget        int                 `json:"budget"`
	Capacity      int                 `json:"capacity"`
	Collaborators []CollaboratorDraft `json:"collaborators,omitempty"`
}

type DecisionRequest struct {
	Decision string `json:"decision"` // "approved" or "rejected"
	Comment  string `json:"comment,omitempty"`
}

type SettlementRequest struct {
	ReceiptRef string `json:"receipt_ref"`
}

// EventFilter controls role-based listing: admins see every status, everyone
// else sees approved events, or completed ones when History is set.
type EventFilter struct {
	Viewer  Viewer
	History bool
}
