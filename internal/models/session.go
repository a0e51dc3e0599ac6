package models

import (
	"time"
)

// SessionStatus represents where a session is in its lifecycle
type SessionStatus string

const (
	// SessionStatusDraft indicates a session exists but is not yet bookable
	SessionStatusDraft SessionStatus = "draft"

	// SessionStatusPublished indicates a session accepts bookings
	SessionStatusPublished SessionStatus = "published"

	// SessionStatusClosed indicates a session no longer accepts bookings
	SessionStatusClosed SessionStatus = "closed"
)

// rank orders statuses so transitions can be checked for monotonicity
func (s SessionStatus) rank() int {
	switch s {
	case SessionStatusDraft:
		return 0
	case SessionStatusPublished:
		return 1
	case SessionStatusClosed:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether moving from s to next never regresses.
// Staying in the same status is allowed.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Session is one occurrence of the recurring activity on a specific date
type Session struct {
	// ID is the unique identifier for the session
	ID string

	// Date is the calendar date (YYYY-MM-DD); at most one session exists per date
	Date string

	// StartsAt is when the session begins
	StartsAt time.Time

	// EndsAt is when the session ends, strictly after StartsAt
	EndsAt time.Time

	// Capacity is the number of confirmed seats
	Capacity int

	// Status is the current lifecycle state
	Status SessionStatus

	// Location is where the session takes place (optional)
	Location string

	// CreatedAt is when the session was created
	CreatedAt time.Time

	// UpdatedAt is when the session was last changed
	UpdatedAt time.Time
}

// IsBookable reports whether the session accepts new bookings
func (s *Session) IsBookable() bool {
	return s.Status == SessionStatusPublished
}
