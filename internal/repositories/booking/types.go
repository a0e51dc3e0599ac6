package booking

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

// SessionStats is the per-session aggregate kept alongside the bookings
type SessionStats struct {
	Confirmed  int
	Waitlisted int

	// Seq is the last sequence number handed out
	Seq int64
}

type CreateBookingInput struct {
	// Booking carries ID, SessionID, FriendID, Phone and CreatedAt.
	// Status and Seq are assigned by the repository.
	Booking *models.Booking

	// Capacity is the session's seat count
	Capacity int
}

type CreateBookingOutput struct {
	Booking *models.Booking

	// AlreadyExists is set when an active booking for the phone was found
	AlreadyExists bool

	// WaitlistPosition is the 1-based place in line for waitlisted bookings
	WaitlistPosition int
}

type CancelBookingInput struct {
	BookingID  string
	CanceledAt time.Time
	CanceledBy models.Actor
	Reason     string
}

type CancelBookingOutput struct {
	Booking        *models.Booking
	PreviousStatus models.BookingStatus
}

type PromoteNextInput struct {
	SessionID  string
	Capacity   int
	PromotedAt time.Time
}

type PromoteNextOutput struct {
	// Promoted is nil when nothing was promoted
	Promoted *models.Booking
}

type GetBookingInput struct {
	BookingID string
}

type GetActiveBookingInput struct {
	SessionID string
	Phone     string
}

type ListSessionBookingsInput struct {
	SessionID string
}

type ListSessionBookingsOutput struct {
	// Bookings are ordered by Seq
	Bookings []*models.Booking
}

type GetSessionStatsInput struct {
	SessionID string
}
