package booking

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/events"
	"github.com/KirkDiggler/pickup/internal/models"
	bookingRepo "github.com/KirkDiggler/pickup/internal/repositories/booking"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/links"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config holds configuration for the booking service
type Config struct {
	// CancelDeadline is how long before start a user may still cancel;
	// defaults to 12h
	CancelDeadline time.Duration

	// BaseURL is the public root used for links inside messages
	BaseURL string

	// Repository dependencies
	BookingRepo bookingRepo.Repository

	// Service dependencies
	Sessions  sessions.Service
	Directory directory.Service
	Links     links.Service
	Messages  messaging.Service
	Notifier  notify.Enqueuer

	// Events receives cancellations for the promotion worker. When nil,
	// promotion runs inline after each cancellation.
	Events events.Publisher

	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Logger        *zap.Logger
	Tracer        trace.Tracer
}

// CreateBookingInput contains parameters for booking a seat
type CreateBookingInput struct {
	SessionID string

	// Phone is raw or E.164; it is normalized before use
	Phone string

	// FriendName is only used when the friend is new
	FriendName string
}

// CreateBookingOutput contains the result of a booking attempt
type CreateBookingOutput struct {
	Booking *models.Booking
	Session *models.Session
	Status  models.BookingStatus

	// AlreadyBooked is set when the friend already held an active booking
	AlreadyBooked bool

	// WaitlistPosition is the 1-based place in line when waitlisted
	WaitlistPosition int

	Roster *models.Roster
}

// CancelBookingInput contains parameters for canceling a booking
type CancelBookingInput struct {
	BookingID string
	Actor     models.Actor
	Reason    string
}

// CancelBookingOutput contains the canceled booking
type CancelBookingOutput struct {
	Booking        *models.Booking
	Session        *models.Session
	PreviousStatus models.BookingStatus
}

// PromoteInput contains parameters for promotion
type PromoteInput struct {
	SessionID string
}

// PromoteOutput contains the promoted booking, if any
type PromoteOutput struct {
	Promoted *models.Booking
}

// GetRosterInput contains parameters for reading a roster
type GetRosterInput struct {
	// SessionID is a session ID or a YYYY-MM-DD date
	SessionID string

	// Admin unmasks phone numbers and includes the waitlist
	Admin bool
}

// GetRosterOutput contains a session's roster
type GetRosterOutput struct {
	Session *models.Session
	Roster  *models.Roster
}

// BookWithLinkInput contains a booking link redemption
type BookWithLinkInput struct {
	Token string

	// Name is optional and only used for new friends
	Name string
}

// CancelWithLinkInput contains a cancel link redemption
type CancelWithLinkInput struct {
	Token string
}

// AdminCancelInput contains an operator cancellation
type AdminCancelInput struct {
	BookingID string
	Reason    string
}

// FindBookingInput identifies a booking through its link
type FindBookingInput struct {
	Token string
}

// FindBookingOutput contains the link holder's active booking
type FindBookingOutput struct {
	Booking *models.Booking
	Session *models.Session
	Friend  *models.Friend
}
