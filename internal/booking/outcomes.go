package booking

import "errors"

// Domain errors. Each maps to one caller-visible outcome; none of them leaves
// the event record partially updated.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrVenueNotFound     = errors.New("venue not found or unavailable")
	ErrConflictDetected  = errors.New("venue already booked for an overlapping interval")
	ErrInvalidTransition = errors.New("event status does not allow this transition")
	ErrMissingReceipt    = errors.New("receipt reference is required for settlement")
	ErrInvalidInterval   = errors.New("start time must be before end time")
	ErrValidation        = errors.New("invalid proposal")
	ErrWriteConflict     = errors.New("event changed concurrently, retry")
)

// RegisterOutcome enumerates the expected results of a registration attempt.
// Full and AlreadyRegistered are ordinary outcomes, not failures.
type RegisterOutcome string

const (
	OutcomeRegistered        RegisterOutcome = "registered"
	OutcomeAlreadyRegistered RegisterOutcome = "already_registered"
	OutcomeFull              RegisterOutcome = "full"
	OutcomeNotOpen           RegisterOutcome = "not_open"
)
