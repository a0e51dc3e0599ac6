package booking

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pickup/internal/repositories/booking Repository

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
)

// Repository defines the interface for the booking ledger store. Every write
// that changes seat usage is one atomic unit together with the session's stats.
type Repository interface {
	// CreateBooking records a booking as confirmed or waitlisted depending on
	// seat usage at write time. An existing active booking for the same phone
	// is returned instead of writing a second one.
	CreateBooking(ctx context.Context, input *CreateBookingInput) (*CreateBookingOutput, error)

	// CancelBooking moves an active booking to canceled
	CancelBooking(ctx context.Context, input *CancelBookingInput) (*CancelBookingOutput, error)

	// PromoteNext confirms the earliest waitlisted booking when a seat is free.
	// It is a no-op otherwise, so repeated calls never over-promote.
	PromoteNext(ctx context.Context, input *PromoteNextInput) (*PromoteNextOutput, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, input *GetBookingInput) (*models.Booking, error)

	// GetActiveBooking retrieves the active booking for a phone in a session
	GetActiveBooking(ctx context.Context, input *GetActiveBookingInput) (*models.Booking, error)

	// ListSessionBookings lists every booking for a session in creation order
	ListSessionBookings(ctx context.Context, input *ListSessionBookingsInput) (*ListSessionBookingsOutput, error)

	// GetSessionStats reads the per-session aggregate
	GetSessionStats(ctx context.Context, input *GetSessionStatsInput) (*SessionStats, error)
}
