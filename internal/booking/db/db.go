package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"venue-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- EVENTS ----------------

// CreateEvent → insert a pending event and its collaborator invites together
func (d *DB) CreateEvent(event models.Event, collabs []models.EventCollaborator) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&event).Exec(ctx); err != nil {
			return err
		}
		if len(collabs) > 0 {
			if _, err := tx.NewInsert().Model(&collabs).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEventByID → fetch one event, nil when it does not exist
func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents applies the role-based visibility rules: admins see every
// status; everyone else sees upcoming approved events, or the completed
// history when the flag is set.
func (d *DB) ListEvents(filter models.EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().Model(&events)

	switch {
	case filter.Viewer.IsAdmin():
		q = q.Order("date ASC", "start_minute ASC")
	case filter.History:
		q = q.Where("status = ?", models.StatusCompleted).
			Order("date DESC", "start_minute ASC")
	default:
		q = q.Where("status = ?", models.StatusApproved).
			Order("date ASC", "start_minute ASC")
	}

	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return events, nil
}

// ApprovedOnSlot → every approved event on one venue and calendar date
func (d *DB) ApprovedOnSlot(venueID string, date time.Time) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("venue_id = ?", venueID).
		Where("date = ?", date).
		Where("status = ?", models.StatusApproved).
		Order("start_minute ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// TransitionStatus applies a status change as a single conditional write. The
// update only lands if the row still carries the expected previous status and
// the version read by the caller; a concurrent transition makes it match zero
// rows and the caller decides whether to retry or report a no-op.
func (d *DB) TransitionStatus(event models.Event, from models.EventStatus) (bool, error) {
	prev := event.Version
	event.Version = prev + 1

	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("status", "admin_comment", "receipt_ref", "version").
		Where("id = ?", event.ID).
		Where("status = ?", from).
		Where("version = ?", prev).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// ReplaceAttendees writes back the attendee list under the same version
// guard. The event must still be approved; capacity is checked by the caller
// against the same snapshot the guard protects.
func (d *DB) ReplaceAttendees(event models.Event) (bool, error) {
	prev := event.Version
	event.Version = prev + 1

	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("attendees", "version").
		Where("id = ?", event.ID).
		Where("status = ?", models.StatusApproved).
		Where("version = ?", prev).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// OverdueApproved → approved events whose date has passed as of the given day
func (d *DB) OverdueApproved(asOf time.Time) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("status = ?", models.StatusApproved).
		Where("date < ?", asOf).
		Order("date ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ---------------- COLLABORATORS ----------------

// AcceptCollaborator marks a collaborator invite accepted. Returns false when
// no such event/club pair exists; re-accepting is a harmless no-op.
func (d *DB) AcceptCollaborator(eventID, clubID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.EventCollaborator)(nil)).
		Set("status = ?", models.CollaborationAccepted).
		Where("event_id = ?", eventID).
		Where("club_id = ?", clubID).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// GetCollaborators → collaborator invites attached to an event
func (d *DB) GetCollaborators(eventID string) ([]models.EventCollaborator, error) {
	var collabs []models.EventCollaborator
	err := d.Bun.NewSelect().
		Model(&collabs).
		Where("event_id = ?", eventID).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return collabs, nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
