package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/messaging Service

import "context"

// Service renders the text bodies sent to friends and operators
type Service interface {
	// GetInviteMessage returns the invite sent when a session is published
	GetInviteMessage(ctx context.Context, input *GetInviteMessageInput) (*GetInviteMessageOutput, error)

	// GetBookingConfirmedMessage returns the message for a confirmed seat
	GetBookingConfirmedMessage(ctx context.Context, input *GetBookingConfirmedMessageInput) (*GetBookingConfirmedMessageOutput, error)

	// GetWaitlistedMessage returns the message for a waitlisted booking
	GetWaitlistedMessage(ctx context.Context, input *GetWaitlistedMessageInput) (*GetWaitlistedMessageOutput, error)

	// GetPromotedMessage returns the message sent when a waitlisted friend gets a seat
	GetPromotedMessage(ctx context.Context, input *GetPromotedMessageInput) (*GetPromotedMessageOutput, error)

	// GetCanceledMessage returns the cancellation receipt
	GetCanceledMessage(ctx context.Context, input *GetCanceledMessageInput) (*GetCanceledMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
