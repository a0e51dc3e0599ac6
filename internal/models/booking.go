package models

import (
	"time"
)

// BookingStatus represents the state of a booking
type BookingStatus string

const (
	// BookingStatusConfirmed indicates the booking holds a seat
	BookingStatusConfirmed BookingStatus = "confirmed"

	// BookingStatusWaitlisted indicates the booking is queued for a seat
	BookingStatusWaitlisted BookingStatus = "waitlisted"

	// BookingStatusCanceled is terminal
	BookingStatusCanceled BookingStatus = "canceled"
)

// IsActive reports whether a booking with this status still counts toward
// the one-booking-per-friend rule
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusConfirmed || s == BookingStatusWaitlisted
}

// Actor identifies who initiated a change
type Actor string

const (
	// ActorUser is the participant acting through a signed link
	ActorUser Actor = "user"

	// ActorAdmin is an operator acting through a privileged surface
	ActorAdmin Actor = "admin"
)

// Booking is a friend's claim on a seat in a session. Records are never
// deleted; status changes are kept as an audit trail.
type Booking struct {
	// ID is the unique identifier for the booking
	ID string

	// SessionID is the session the booking belongs to
	SessionID string

	// FriendID is the friend who holds the booking
	FriendID string

	// Phone is the friend's E.164 number, denormalized for lookup
	Phone string

	// Status is the current state
	Status BookingStatus

	// Seq is the per-session creation sequence; it defines waitlist order
	Seq int64

	// CreatedAt is when the booking was created
	CreatedAt time.Time

	// PromotedAt is when a waitlisted booking was confirmed
	PromotedAt *time.Time

	// CanceledAt is when the booking was canceled
	CanceledAt *time.Time

	// CanceledBy records whether a user or an admin canceled
	CanceledBy Actor

	// CancelReason is an optional note recorded on cancellation
	CancelReason string
}
