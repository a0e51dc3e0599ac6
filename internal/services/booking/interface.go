package booking

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/booking Service

import "context"

// Service defines the booking ledger operations
type Service interface {
	// CreateBooking books a friend into a published session, confirmed while
	// seats remain and waitlisted after
	CreateBooking(ctx context.Context, input *CreateBookingInput) (*CreateBookingOutput, error)

	// CancelBooking cancels a booking; users are bound by the cancel deadline
	CancelBooking(ctx context.Context, input *CancelBookingInput) (*CancelBookingOutput, error)

	// Promote confirms the next waitlisted booking if a seat is free
	Promote(ctx context.Context, input *PromoteInput) (*PromoteOutput, error)

	// GetRoster returns the confirmed participants of a session
	GetRoster(ctx context.Context, input *GetRosterInput) (*GetRosterOutput, error)

	// BookWithLink redeems a signed booking link
	BookWithLink(ctx context.Context, input *BookWithLinkInput) (*CreateBookingOutput, error)

	// CancelWithLink cancels the link holder's active booking
	CancelWithLink(ctx context.Context, input *CancelWithLinkInput) (*CancelBookingOutput, error)

	// AdminCancel cancels any booking regardless of deadline
	AdminCancel(ctx context.Context, input *AdminCancelInput) (*CancelBookingOutput, error)

	// FindBooking returns the link holder's active booking
	FindBooking(ctx context.Context, input *FindBookingInput) (*FindBookingOutput, error)
}
