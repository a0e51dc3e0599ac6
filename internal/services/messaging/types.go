package messaging

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

// ErrorType names a user-facing failure
type ErrorType string

const (
	ErrorTypeInvalidLink     ErrorType = "invalid_link"
	ErrorTypeNotPublished    ErrorType = "not_published"
	ErrorTypeDeadlinePassed  ErrorType = "deadline_passed"
	ErrorTypeAlreadyCanceled ErrorType = "already_canceled"
	ErrorTypeInvalidPhone    ErrorType = "invalid_phone"
	ErrorTypeBusy            ErrorType = "busy"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeForbidden       ErrorType = "forbidden"
)

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
	// TimeZone is used when printing session times; defaults to UTC
	TimeZone *time.Location

	// Seed fixes the variant picker; zero seeds from the clock
	Seed int64
}

// GetInviteMessageInput contains parameters for an invite
type GetInviteMessageInput struct {
	FriendName string
	Session    *models.Session

	// BookURL is the signed link that books a seat
	BookURL string
}

// GetInviteMessageOutput contains the rendered invite
type GetInviteMessageOutput struct {
	Message string
}

// GetBookingConfirmedMessageInput contains parameters for a confirmation
type GetBookingConfirmedMessageInput struct {
	FriendName string
	Session    *models.Session

	// CancelURL releases the seat; CalendarURL downloads an .ics (optional)
	CancelURL   string
	CalendarURL string

	// AlreadyBooked is set when the friend redeemed a link twice
	AlreadyBooked bool
}

// GetBookingConfirmedMessageOutput contains the rendered confirmation
type GetBookingConfirmedMessageOutput struct {
	Message string
}

// GetWaitlistedMessageInput contains parameters for a waitlist notice
type GetWaitlistedMessageInput struct {
	FriendName string
	Session    *models.Session

	// Position is the 1-based place in line
	Position  int
	CancelURL string
}

// GetWaitlistedMessageOutput contains the rendered waitlist notice
type GetWaitlistedMessageOutput struct {
	Message string
}

// GetPromotedMessageInput contains parameters for a promotion notice
type GetPromotedMessageInput struct {
	FriendName  string
	Session     *models.Session
	CancelURL   string
	CalendarURL string
}

// GetPromotedMessageOutput contains the rendered promotion notice
type GetPromotedMessageOutput struct {
	Message string
}

// GetCanceledMessageInput contains parameters for a cancellation receipt
type GetCanceledMessageInput struct {
	FriendName string
	Session    *models.Session

	// CanceledBy distinguishes a self-service cancel from an operator one
	CanceledBy models.Actor
	Reason     string
}

// GetCanceledMessageOutput contains the rendered receipt
type GetCanceledMessageOutput struct {
	Message string
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	ErrorType ErrorType
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	Message string
}
