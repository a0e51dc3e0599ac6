package models

import (
	"time"
)

// BookingCanceledEvent is published after a cancellation is recorded and
// drives waitlist promotion. Seat counts are always re-read from the ledger.
type BookingCanceledEvent struct {
	// ID is the unique identifier for the event
	ID string

	// SessionID is the session whose seat may have freed up
	SessionID string

	// BookingID is the canceled booking
	BookingID string

	// PreviousStatus is the status the booking had before cancellation
	PreviousStatus BookingStatus

	// Actor is who canceled
	Actor Actor

	// OccurredAt is when the cancellation was recorded
	OccurredAt time.Time
}
