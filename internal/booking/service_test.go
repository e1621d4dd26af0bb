package booking_test

import (
	"time"

	"testing"

	"venue-booking/internal/booking"
	"venue-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(event models.Event, collabs []models.EventCollaborator) error {
	args := m.Called(event, collabs)
	return args.Error(0)
}

func (m *MockDBLayer) GetEventByID(id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) ListEvents(filter models.EventFilter) ([]models.Event, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) ApprovedOnSlot(venueID string, date time.Time) ([]models.Event, error) {
	args := m.Called(venueID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) TransitionStatus(event models.Event, from models.EventStatus) (bool, error) {
	args := m.Called(event, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) ReplaceAttendees(event models.Event) (bool, error) {
	args := m.Called(event)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) OverdueApproved(asOf time.Time) ([]models.Event, error) {
	args := m.Called(asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) AcceptCollaborator(eventID, clubID string) (bool, error) {
	args := m.Called(eventID, clubID)
	return args.Bool(0), args.Error(1)
}

type MockVenueDirectory struct {
	mock.Mock
}

func (m *MockVenueDirectory) GetVenueByID(id string) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func (m *MockVenueDirectory) ListVenues() ([]models.Venue, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Venue), args.Error(1)
}

type MockSlotLock struct {
	mock.Mock
}

func (m *MockSlotLock) LockSlot(venueID string, date time.Time, token string) (bool, error) {
	args := m.Called(venueID, date, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlotLock) UnlockSlot(venueID string, date time.Time, token string) error {
	args := m.Called(venueID, date, token)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishStatusChange(n models.NotificationRequest) error {
	args := m.Called(n)
	return args.Error(0)
}

func newService() (*booking.BookingService, *MockDBLayer, *MockVenueDirectory, *MockSlotLock, *MockNotifier) {
	mockDB := new(MockDBLayer)
	mockVenues := new(MockVenueDirectory)
	mockLock := new(MockSlotLock)
	mockNotify := new(MockNotifier)
	svc := booking.NewBookingService(mockDB, mockVenues, mockLock, mockNotify)
	return svc, mockDB, mockVenues, mockLock, mockNotify
}

func testVenue() *models.Venue {
	return &models.Venue{ID: "venue-1", Name: "Seminar Hall", Capacity: 100, Available: true}
}

func proposal() models.ProposalRequest {
	return models.ProposalRequest{
		Name:     "Robotics Workshop",
		VenueID:  "venue-1",
		Date:     "2026-09-10",
		Start:    "10:00",
		End:      "12:00",
		Budget:   500,
		Capacity: 30,
	}
}

// Tests start here
func TestProposeEventCreatesPending(t *testing.T) {
	svc, mockDB, mockVenues, mockLock, _ := newService()

	mockVenues.On("GetVenueByID", "venue-1").Return(testVenue(), nil)
	mockLock.On("LockSlot", "venue-1", mock.Anything, mock.Anything).Return(true, nil)
	mockLock.On("UnlockSlot", "venue-1", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("ApprovedOnSlot", "venue-1", mock.Anything).Return([]models.Event{}, nil)
	mockDB.On("CreateEvent", mock.MatchedBy(func(e models.Event) bool {
		return e.Status == models.StatusPending && e.StartMinute == 600 && e.EndMinute == 720
	}), mock.Anything).Return(nil)

	event, err := svc.ProposeEvent(proposal(), "member-7")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, event.Status)
	assert.Equal(t, "member-7", event.OrganizerID)
	assert.Empty(t, event.Attendees)
	mockDB.AssertExpectations(t)
}

func TestProposeEventRejectsOverlapWithApproved(t *testing.T) {
	svc, mockDB, mockVenues, mockLock, _ := newService()

	approved := models.Event{
		ID: "existing", VenueID: "venue-1", Status: models.StatusApproved,
		StartMinute: 660, EndMinute: 780, // 11:00-13:00
	}

	mockVenues.On("GetVenueByID", "venue-1").Return(testVenue(), nil)
	mockLock.On("LockSlot", "venue-1", mock.Anything, mock.Anything).Return(true, nil)
	mockLock.On("UnlockSlot", "venue-1", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("ApprovedOnSlot", "venue-1", mock.Anything).Return([]models.Event{approved}, nil)

	_, err := svc.ProposeEvent(proposal(), "member-7") // 10:00-12:00 overlaps

	assert.ErrorIs(t, err, booking.ErrConflictDetected)
	mockDB.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestProposeEventAllowsBackToBack(t *testing.T) {
	svc, mockDB, mockVenues, mockLock, _ := newService()

	// Approved booking ends exactly when the request starts.
	approved := models.Event{
		ID: "existing", VenueID: "venue-1", Status: models.StatusApproved,
		StartMinute: 480, EndMinute: 600, // 08:00-10:00
	}

	mockVenues.On("GetVenueByID", "venue-1").Return(testVenue(), nil)
	mockLock.On("LockSlot", "venue-1", mock.Anything, mock.Anything).Return(true, nil)
	mockLock.On("UnlockSlot", "venue-1", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("ApprovedOnSlot", "venue-1", mock.Anything).Return([]models.Event{approved}, nil)
	mockDB.On("CreateEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.ProposeEvent(proposal(), "member-7")

	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestProposeEventUnknownVenue(t *testing.T) {
	svc, mockDB, mockVenues, _, _ := newService()

	mockVenues.On("GetVenueByID", "venue-1").Return(nil, nil)

	_, err := svc.ProposeEvent(proposal(), "member-7")

	assert.ErrorIs(t, err, booking.ErrVenueNotFound)
	mockDB.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestProposeEventInvalidInterval(t *testing.T) {
	svc, _, mockVenues, _, _ := newService()

	mockVenues.On("GetVenueByID", "venue-1").Return(testVenue(), nil)

	req := proposal()
	req.Start = "12:00"
	req.End = "10:00"

	_, err := svc.ProposeEvent(req, "member-7")

	assert.ErrorIs(t, err, booking.ErrInvalidInterval)
}

func TestDecideEventApprovesPending(t *testing.T) {
	svc, mockDB, _, mockLock, mockNotify := newService()

	pending := &models.Event{
		ID: "ev-1", Name: "Hackathon", OrganizerID: "member-7",
		VenueID: "venue-1", Status: models.StatusPending,
		StartMinute: 600, EndMinute: 720, Version: 3,
	}

	mockDB.On("GetEventByID", "ev-1").Return(pending, nil)
	mockLock.On("LockSlot", "venue-1", mock.Anything, "ev-1").Return(true, nil)
	mockLock.On("UnlockSlot", "venue-1", mock.Anything, "ev-1").Return(nil)
	mockDB.On("ApprovedOnSlot", "venue-1", mock.Anything).Return([]models.Event{}, nil)
	mockDB.On("TransitionStatus", mock.MatchedBy(func(e models.Event) bool {
		return e.Status == models.StatusApproved && e.ID == "ev-1"
	}), models.StatusPending).Return(true, nil)
	mockNotify.On("PublishStatusChange", mock.MatchedBy(func(n models.NotificationRequest) bool {
		return n.RecipientID == "member-7" && n.Severity == models.SeveritySuccess
	})).Return(nil)

	event, err := svc.DecideEvent("ev-1", "approved", "")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, event.Status)
	mockDB.AssertExpectations(t)
	mockNotify.AssertExpectations(t)
}

func TestDecideEventRejectsWithComment(t *testing.T) {
	svc, mockDB, _, _, mockNotify := newService()

	pending := &models.Event{
		ID: "ev-1", Name: "Hackathon", OrganizerID: "member-7",
		VenueID: "venue-1", Status: models.StatusPending,
	}

	mockDB.On("GetEventByID", "ev-1").Return(pending, nil)
	mockDB.On("TransitionStatus", mock.MatchedBy(func(e models.Event) bool {
		return e.Status == models.StatusRejected && e.AdminComment == "budget too high"
	}), models.StatusPending).Return(true, nil)
	mockNotify.On("PublishStatusChange", mock.MatchedBy(func(n models.NotificationRequest) bool {
		return n.Severity == models.SeverityError
	})).Return(nil)

	event, err := svc.DecideEvent("ev-1", "rejected", "budget too high")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, event.Status)
	mockNotify.AssertExpectations(t)
}

func TestDecideEventTwiceIsInvalidTransition(t *testing.T) {
	svc, mockDB, _, _, mockNotify := newService()

	alreadyApproved := &models.Event{ID: "ev-1", Status: models.StatusApproved}
	mockDB.On("GetEventByID", "ev-1").Return(alreadyApproved, nil)

	_, err := svc.DecideEvent("ev-1", "approved", "")

	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	mockDB.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything)
	mockNotify.AssertNotCalled(t, "PublishStatusChange", mock.Anything)
}

func TestDecideEventApprovalConflictsWithNewlyApproved(t *testing.T) {
	svc, mockDB, _, mockLock, mockNotify := newService()

	// Event B was proposed while A was still pending; A has since been
	// approved on the same slot, so approving B must fail with a conflict.
	pendingB := &models.Event{
		ID: "ev-b", VenueID: "venue-1", Status: models.StatusPending,
		StartMinute: 660, EndMinute: 780,
	}
	approvedA := models.Event{
		ID: "ev-a", VenueID: "venue-1", Status: models.StatusApproved,
		StartMinute: 600, EndMinute: 720,
	}

	mockDB.On("GetEventByID", "ev-b").Return(pendingB, nil)
	mockLock.On("LockSlot", "venue-1", mock.Anything, "ev-b").Return(true, nil)
	mockLock.On("UnlockSlot", "venue-1", mock.Anything, "ev-b").Return(nil)
	mockDB.On("ApprovedOnSlot", "venue-1", mock.Anything).Return([]models.Event{approvedA}, nil)

	_, err := svc.DecideEvent("ev-b", "approved", "")

	assert.ErrorIs(t, err, booking.ErrConflictDetected)
	mockDB.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything)
	mockNotify.AssertNotCalled(t, "PublishStatusChange", mock.Anything)
}

func TestDecideEventNotFound(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	mockDB.On("GetEventByID", "missing").Return(nil, nil)

	_, err := svc.DecideEvent("missing", "approved", "")

	assert.ErrorIs(t, err, booking.ErrEventNotFound)
}

func TestSettleEventCompletesApproved(t *testing.T) {
	svc, mockDB, _, _, mockNotify := newService()

	approved := &models.Event{
		ID: "ev-1", Name: "Hackathon", OrganizerID: "member-7",
		Status: models.StatusApproved,
	}

	mockDB.On("GetEventByID", "ev-1").Return(approved, nil)
	mockDB.On("TransitionStatus", mock.MatchedBy(func(e models.Event) bool {
		return e.Status == models.StatusCompleted && e.ReceiptRef == "receipts/ev-1.pdf"
	}), models.StatusApproved).Return(true, nil)
	mockNotify.On("PublishStatusChange", mock.Anything).Return(nil)

	event, err := svc.SettleEvent("ev-1", "receipts/ev-1.pdf")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, event.Status)
	mockDB.AssertExpectations(t)
}

func TestSettleEventRequiresReceipt(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	_, err := svc.SettleEvent("ev-1", "  ")

	assert.ErrorIs(t, err, booking.ErrMissingReceipt)
	mockDB.AssertNotCalled(t, "GetEventByID", mock.Anything)
}

func TestSettleEventAfterSweepIsInvalidTransition(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	completed := &models.Event{ID: "ev-1", Status: models.StatusCompleted}
	mockDB.On("GetEventByID", "ev-1").Return(completed, nil)

	_, err := svc.SettleEvent("ev-1", "receipts/ev-1.pdf")

	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	mockDB.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything)
}

func TestRegisterForEvent(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	approved := &models.Event{
		ID: "ev-1", Status: models.StatusApproved, Capacity: 2,
		Attendees: []string{},
	}

	mockDB.On("GetEventByID", "ev-1").Return(approved, nil)
	mockDB.On("ReplaceAttendees", mock.MatchedBy(func(e models.Event) bool {
		return len(e.Attendees) == 1 && e.Attendees[0] == "member-x"
	})).Return(true, nil)

	outcome, event, err := svc.RegisterForEvent("ev-1", "member-x")

	assert.NoError(t, err)
	assert.Equal(t, booking.OutcomeRegistered, outcome)
	assert.Equal(t, []string{"member-x"}, event.Attendees)
}

func TestRegisterForEventDuplicate(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	approved := &models.Event{
		ID: "ev-1", Status: models.StatusApproved, Capacity: 2,
		Attendees: []string{"member-x"},
	}
	mockDB.On("GetEventByID", "ev-1").Return(approved, nil)

	outcome, event, err := svc.RegisterForEvent("ev-1", "member-x")

	assert.NoError(t, err)
	assert.Equal(t, booking.OutcomeAlreadyRegistered, outcome)
	assert.Len(t, event.Attendees, 1)
	mockDB.AssertNotCalled(t, "ReplaceAttendees", mock.Anything)
}

func TestRegisterForEventFull(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	full := &models.Event{
		ID: "ev-1", Status: models.StatusApproved, Capacity: 2,
		Attendees: []string{"member-x", "member-y"},
	}
	mockDB.On("GetEventByID", "ev-1").Return(full, nil)

	outcome, _, err := svc.RegisterForEvent("ev-1", "member-z")

	assert.NoError(t, err)
	assert.Equal(t, booking.OutcomeFull, outcome)
	mockDB.AssertNotCalled(t, "ReplaceAttendees", mock.Anything)
}

func TestRegisterForEventNotOpen(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	pending := &models.Event{ID: "ev-1", Status: models.StatusPending, Capacity: 10}
	mockDB.On("GetEventByID", "ev-1").Return(pending, nil)

	outcome, _, err := svc.RegisterForEvent("ev-1", "member-x")

	assert.NoError(t, err)
	assert.Equal(t, booking.OutcomeNotOpen, outcome)
}

func TestRegisterForEventNotFound(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	mockDB.On("GetEventByID", "missing").Return(nil, nil)

	_, _, err := svc.RegisterForEvent("missing", "member-x")

	assert.ErrorIs(t, err, booking.ErrEventNotFound)
}

func TestRegisterForEventRetriesLostWrite(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	// Each fetch returns a fresh snapshot, as the store would.
	mockDB.On("GetEventByID", "ev-1").Return(&models.Event{
		ID: "ev-1", Status: models.StatusApproved, Capacity: 5,
		Attendees: []string{}, Version: 1,
	}, nil).Once()
	mockDB.On("GetEventByID", "ev-1").Return(&models.Event{
		ID: "ev-1", Status: models.StatusApproved, Capacity: 5,
		Attendees: []string{}, Version: 2,
	}, nil).Once()
	// First write loses the version race, the automatic retry lands.
	mockDB.On("ReplaceAttendees", mock.Anything).Return(false, nil).Once()
	mockDB.On("ReplaceAttendees", mock.Anything).Return(true, nil).Once()

	outcome, _, err := svc.RegisterForEvent("ev-1", "member-x")

	assert.NoError(t, err)
	assert.Equal(t, booking.OutcomeRegistered, outcome)
	mockDB.AssertExpectations(t)
}

func TestRunSweepCompletesOverdue(t *testing.T) {
	svc, mockDB, _, _, mockNotify := newService()

	yesterday := time.Now().AddDate(0, 0, -1)
	overdue := []models.Event{
		{ID: "ev-1", Name: "Old Meetup", OrganizerID: "member-7", Status: models.StatusApproved, Date: yesterday},
		{ID: "ev-2", Name: "Old Talk", OrganizerID: "member-8", Status: models.StatusApproved, Date: yesterday},
	}

	mockDB.On("OverdueApproved", mock.Anything).Return(overdue, nil)
	mockDB.On("TransitionStatus", mock.MatchedBy(func(e models.Event) bool {
		return e.Status == models.StatusCompleted
	}), models.StatusApproved).Return(true, nil)
	mockNotify.On("PublishStatusChange", mock.MatchedBy(func(n models.NotificationRequest) bool {
		return n.Severity == models.SeverityInfo
	})).Return(nil).Times(2)

	count, err := svc.RunSweep(time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	mockNotify.AssertExpectations(t)
}

func TestRunSweepLosesRaceToSettlement(t *testing.T) {
	svc, mockDB, _, _, mockNotify := newService()

	overdue := []models.Event{
		{ID: "ev-1", OrganizerID: "member-7", Status: models.StatusApproved},
	}

	mockDB.On("OverdueApproved", mock.Anything).Return(overdue, nil)
	// A settlement claimed the record first; the sweep's guarded write
	// matches nothing and no notification goes out.
	mockDB.On("TransitionStatus", mock.Anything, models.StatusApproved).Return(false, nil)

	count, err := svc.RunSweep(time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	mockNotify.AssertNotCalled(t, "PublishStatusChange", mock.Anything)
}

func TestRunSweepIdempotent(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	// Nothing left approved and overdue: the second run is a no-op.
	mockDB.On("OverdueApproved", mock.Anything).Return([]models.Event{}, nil)

	count, err := svc.RunSweep(time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	mockDB.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything)
}

func TestAcceptCollaboration(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	mockDB.On("AcceptCollaborator", "ev-1", "club-9").Return(true, nil)

	err := svc.AcceptCollaboration("ev-1", "club-9")

	assert.NoError(t, err)
}

func TestAcceptCollaborationUnknownPair(t *testing.T) {
	svc, mockDB, _, _, _ := newService()

	mockDB.On("AcceptCollaborator", "ev-1", "club-unknown").Return(false, nil)

	err := svc.AcceptCollaboration("ev-1", "club-unknown")

	assert.ErrorIs(t, err, booking.ErrEventNotFound)
}
