package booking

import (
	"fmt"
	"strings"
	"time"

	"venue-booking/internal/models"
	"venue-booking/internal/utils"

	"github.com/google/uuid"
)

// writeAttempts bounds the automatic retry after a lost conditional write.
const writeAttempts = 2

type DBLayer interface {
	CreateEvent(event models.Event, collabs []models.EventCollaborator) error
	GetEventByID(id string) (*models.Event, error)
	ListEvents(filter models.EventFilter) ([]models.Event, error)
	ApprovedOnSlot(venueID string, date time.Time) ([]models.Event, error)
	TransitionStatus(event models.Event, from models.EventStatus) (bool, error)
	ReplaceAttendees(event models.Event) (bool, error)
	OverdueApproved(asOf time.Time) ([]models.Event, error)
	AcceptCollaborator(eventID, clubID string) (bool, error)
}

type VenueDirectory interface {
	GetVenueByID(id string) (*models.Venue, error)
	ListVenues() ([]models.Venue, error)
}

type SlotLock interface {
	LockSlot(venueID string, date time.Time, token string) (bool, error)
	UnlockSlot(venueID string, date time.Time, token string) error
}

type NotificationPublisher interface {
	PublishStatusChange(n models.NotificationRequest) error
}

type BookingService struct {
	DB     DBLayer
	Venues VenueDirectory
	Lock   SlotLock
	Notify NotificationPublisher
}

func NewBookingService(db DBLayer, venues VenueDirectory, lock SlotLock, notify NotificationPublisher) *BookingService {
	return &BookingService{DB: db, Venues: venues, Lock: lock, Notify: notify}
}

// ---------------- PROPOSALS ----------------

// ProposeEvent validates a proposal, runs the conflict check under the
// venue-slot lock and persists the event in pending state.
func (s *BookingService) ProposeEvent(req models.ProposalRequest, organizerID string) (*models.Event, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}
	if req.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}

	date, err := utils.ParseDay(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, err := utils.ParseClock(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	end, err := utils.ParseClock(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if start >= end {
		return nil, ErrInvalidInterval
	}

	venue, err := s.Venues.GetVenueByID(req.VenueID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up venue %s: %w", req.VenueID, err)
	}
	if venue == nil || !venue.Available {
		return nil, ErrVenueNotFound
	}

	eventID := uuid.NewString()

	// The slot lock serializes proposals and approvals on the same
	// venue-day so the conflict check and the insert commit together.
	ok, err := s.Lock.LockSlot(req.VenueID, date, eventID)
	if err != nil {
		return nil, fmt.Errorf("slot lock error: %w", err)
	}
	if !ok {
		return nil, ErrWriteConflict
	}
	defer s.Lock.UnlockSlot(req.VenueID, date, eventID)

	conflict, err := s.HasConflict(req.VenueID, date, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrConflictDetected
	}

	event := models.Event{
		ID:          eventID,
		Name:        req.Name,
		Description: req.Description,
		OrganizerID: organizerID,
		ClubID:      req.ClubID,
		VenueID:     req.VenueID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		Budget:      req.Budget,
		Capacity:    req.Capacity,
		Attendees:   []string{},
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}

	collabs := make([]models.EventCollaborator, 0, len(req.Collaborators))
	for _, draft := range req.Collaborators {
		role := draft.Role
		if role == "" {
			role = "collaborator"
		}
		collabs = append(collabs, models.EventCollaborator{
			ID:      uuid.NewString(),
			EventID: eventID,
			ClubID:  draft.ClubID,
			Role:    role,
			Status:  models.CollaborationPending,
		})
	}

	if err := s.DB.CreateEvent(event, collabs); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &event, nil
}

// ---------------- TRANSITIONS ----------------

// DecideEvent applies an administrative approve/reject decision to a pending
// event. Approval re-runs the conflict check under the slot lock, so a
// proposal that was clean at submission still cannot double-book the venue.
func (s *BookingService) DecideEvent(eventID, decision, comment string) (*models.Event, error) {
	to := models.EventStatus(decision)
	if to != models.StatusApproved && to != models.StatusRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	for attempt := 0; attempt < writeAttempts; attempt++ {
		event, err := s.DB.GetEventByID(eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
		}
		if event == nil {
			return nil, ErrEventNotFound
		}
		if event.Status != models.StatusPending {
			return nil, ErrInvalidTransition
		}

		if to == models.StatusApproved {
			ok, err := s.Lock.LockSlot(event.VenueID, event.Date, eventID)
			if err != nil {
				return nil, fmt.Errorf("slot lock error: %w", err)
			}
			if !ok {
				continue
			}
			conflict, err := s.HasConflict(event.VenueID, event.Date, event.StartMinute, event.EndMinute, eventID)
			if err != nil {
				s.Lock.UnlockSlot(event.VenueID, event.Date, eventID)
				return nil, err
			}
			if conflict {
				s.Lock.UnlockSlot(event.VenueID, event.Date, eventID)
				return nil, ErrConflictDetected
			}
		}

		event.Status = to
		event.AdminComment = comment

		applied, err := s.DB.TransitionStatus(*event, models.StatusPending)
		if to == models.StatusApproved {
			s.Lock.UnlockSlot(event.VenueID, event.Date, eventID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to apply decision: %w", err)
		}
		if !applied {
			continue
		}

		severity := models.SeveritySuccess
		message := fmt.Sprintf("Your event %q was approved", event.Name)
		if to == models.StatusRejected {
			severity = models.SeverityError
			message = fmt.Sprintf("Your event %q was rejected", event.Name)
		}
		if comment != "" {
			message = fmt.Sprintf("%s: %s", message, comment)
		}
		s.publish(event.OrganizerID, message, severity, event.ID)

		return event, nil
	}

	return nil, ErrWriteConflict
}

// SettleEvent completes an approved event on receipt submission. A sweep that
// got there first already moved the event to completed and this reports an
// invalid transition.
func (s *BookingService) SettleEvent(eventID, receiptRef string) (*models.Event, error) {
	if strings.TrimSpace(receiptRef) == "" {
		return nil, ErrMissingReceipt
	}

	for attempt := 0; attempt < writeAttempts; attempt++ {
		event, err := s.DB.GetEventByID(eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
		}
		if event == nil {
			return nil, ErrEventNotFound
		}
		if event.Status != models.StatusApproved {
			return nil, ErrInvalidTransition
		}

		event.Status = models.StatusCompleted
		event.ReceiptRef = receiptRef

		applied, err := s.DB.TransitionStatus(*event, models.StatusApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to settle event: %w", err)
		}
		if !applied {
			continue
		}

		s.publish(event.OrganizerID,
			fmt.Sprintf("Your event %q was settled and completed", event.Name),
			models.SeveritySuccess, event.ID)

		return event, nil
	}

	return nil, ErrWriteConflict
}

// RunSweep moves every approved event dated before asOf to completed and
// returns how many events it advanced. Each row is claimed with a guarded
// write, so a rerun or a racing settlement finds nothing left to claim and no
// duplicate notifications go out.
func (s *BookingService) RunSweep(asOf time.Time) (int, error) {
	overdue, err := s.DB.OverdueApproved(utils.DayOf(asOf))
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue events: %w", err)
	}

	completed := 0
	for _, event := range overdue {
		event.Status = models.StatusCompleted
		applied, err := s.DB.TransitionStatus(event, models.StatusApproved)
		if err != nil {
			return completed, fmt.Errorf("sweep failed on event %s: %w", event.ID, err)
		}
		if !applied {
			// Lost to a settlement; nothing to do for this one.
			continue
		}
		completed++
		s.publish(event.OrganizerID,
			fmt.Sprintf("Your event %q was automatically completed after its date passed", event.Name),
			models.SeverityInfo, event.ID)
	}

	return completed, nil
}

// ---------------- REGISTRATION ----------------

// RegisterForEvent admits a member to an approved event. The attendee list is
// written back with a version guard, so two registrations racing for the last
// seat cannot both be admitted.
func (s *BookingService) RegisterForEvent(eventID, memberID string) (RegisterOutcome, *models.Event, error) {
	for attempt := 0; attempt < writeAttempts; attempt++ {
		event, err := s.DB.GetEventByID(eventID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
		}
		if event == nil {
			return "", nil, ErrEventNotFound
		}
		if event.Status != models.StatusApproved {
			return OutcomeNotOpen, event, nil
		}
		if event.HasAttendee(memberID) {
			return OutcomeAlreadyRegistered, event, nil
		}
		if len(event.Attendees) >= event.Capacity {
			return OutcomeFull, event, nil
		}

		event.Attendees = append(event.Attendees, memberID)

		applied, err := s.DB.ReplaceAttendees(*event)
		if err != nil {
			return "", nil, fmt.Errorf("failed to register member: %w", err)
		}
		if !applied {
			continue
		}

		return OutcomeRegistered, event, nil
	}

	return "", nil, ErrWriteConflict
}

// ---------------- QUERIES ----------------

func (s *BookingService) GetEvent(id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", id, err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *BookingService) ListEvents(viewer models.Viewer, history bool) ([]models.Event, error) {
	return s.DB.ListEvents(models.EventFilter{Viewer: viewer, History: history})
}

func (s *BookingService) ListVenues() ([]models.Venue, error) {
	return s.Venues.ListVenues()
}

// ---------------- COLLABORATORS ----------------

func (s *BookingService) AcceptCollaboration(eventID, clubID string) error {
	accepted, err := s.DB.AcceptCollaborator(eventID, clubID)
	if err != nil {
		return fmt.Errorf("failed to accept collaboration: %w", err)
	}
	if !accepted {
		return ErrEventNotFound
	}
	return nil
}

// publish is fire-and-forget: the transition already committed, a delivery
// failure only gets logged.
func (s *BookingService) publish(recipientID, message string, severity models.Severity, eventID string) {
	n := models.NotificationRequest{
		RecipientID: recipientID,
		Message:     message,
		Severity:    severity,
		EventID:     eventID,
	}
	if err := s.Notify.PublishStatusChange(n); err != nil {
		fmt.Printf("notification publish error for event %s: %v\n", eventID, err)
	}
}
