package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

const (
	whenLayout = "Mon Jan 2, 3:04 PM"
)

// service implements the Service interface
type service struct {
	tz *time.Location

	// Random number generator for selecting message variants
	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		config = &ServiceConfig{}
	}

	tz := config.TimeZone
	if tz == nil {
		tz = time.UTC
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &service{
		tz:   tz,
		rand: rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *service) pick(messages []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return messages[s.rand.Intn(len(messages))]
}

func (s *service) when(session *models.Session) string {
	return session.StartsAt.In(s.tz).Format(whenLayout)
}

func (s *service) where(session *models.Session) string {
	if session.Location == "" {
		return ""
	}
	return " at " + session.Location
}

func greeting(name string) string {
	if name == "" {
		return "Hey"
	}
	return "Hey " + name
}

// GetInviteMessage returns the invite sent when a session is published
func (s *service) GetInviteMessage(ctx context.Context, input *GetInviteMessageInput) (*GetInviteMessageOutput, error) {
	if input == nil || input.Session == nil || input.BookURL == "" {
		return nil, errors.New("session and book URL are required")
	}

	openers := []string{
		"pickup is on",
		"we're playing",
		"game on",
		"courts are booked",
	}

	message := fmt.Sprintf("%s, %s %s%s. %d spots. Grab one: %s",
		greeting(input.FriendName),
		s.pick(openers),
		s.when(input.Session),
		s.where(input.Session),
		input.Session.Capacity,
		input.BookURL,
	)

	return &GetInviteMessageOutput{
		Message: message,
	}, nil
}

// GetBookingConfirmedMessage returns the message for a confirmed seat
func (s *service) GetBookingConfirmedMessage(ctx context.Context, input *GetBookingConfirmedMessageInput) (*GetBookingConfirmedMessageOutput, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("session is required")
	}

	var lead string
	if input.AlreadyBooked {
		lead = "you already have a spot"
	} else {
		lead = s.pick([]string{
			"you're in",
			"you've got a spot",
			"see you on the court",
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s for %s%s.", greeting(input.FriendName), lead, s.when(input.Session), s.where(input.Session))
	if input.CalendarURL != "" {
		fmt.Fprintf(&b, " Add to calendar: %s", input.CalendarURL)
	}
	if input.CancelURL != "" {
		fmt.Fprintf(&b, " Can't make it? %s", input.CancelURL)
	}

	return &GetBookingConfirmedMessageOutput{
		Message: b.String(),
	}, nil
}

// GetWaitlistedMessage returns the message for a waitlisted booking
func (s *service) GetWaitlistedMessage(ctx context.Context, input *GetWaitlistedMessageInput) (*GetWaitlistedMessageOutput, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("session is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s is full. You're #%d on the waitlist and we'll text you if a spot opens.",
		greeting(input.FriendName),
		s.when(input.Session),
		input.Position,
	)
	if input.CancelURL != "" {
		fmt.Fprintf(&b, " Leave the waitlist: %s", input.CancelURL)
	}

	return &GetWaitlistedMessageOutput{
		Message: b.String(),
	}, nil
}

// GetPromotedMessage returns the message sent when a waitlisted friend gets a seat
func (s *service) GetPromotedMessage(ctx context.Context, input *GetPromotedMessageInput) (*GetPromotedMessageOutput, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("session is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, a spot opened up! You're in for %s%s.",
		greeting(input.FriendName),
		s.when(input.Session),
		s.where(input.Session),
	)
	if input.CalendarURL != "" {
		fmt.Fprintf(&b, " Add to calendar: %s", input.CalendarURL)
	}
	if input.CancelURL != "" {
		fmt.Fprintf(&b, " Can't make it? %s", input.CancelURL)
	}

	return &GetPromotedMessageOutput{
		Message: b.String(),
	}, nil
}

// GetCanceledMessage returns the cancellation receipt
func (s *service) GetCanceledMessage(ctx context.Context, input *GetCanceledMessageInput) (*GetCanceledMessageOutput, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("session is required")
	}

	var message string
	if input.CanceledBy == models.ActorAdmin {
		message = fmt.Sprintf("%s, the organizer removed your booking for %s.", greeting(input.FriendName), s.when(input.Session))
		if input.Reason != "" {
			message += " Reason: " + input.Reason
		}
	} else {
		message = fmt.Sprintf("%s, you're off the list for %s. %s",
			greeting(input.FriendName),
			s.when(input.Session),
			s.pick([]string{"Next time!", "Catch you at the next one.", "Thanks for the heads up."}),
		)
	}

	return &GetCanceledMessageOutput{
		Message: message,
	}, nil
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var message string
	switch input.ErrorType {
	case ErrorTypeInvalidLink:
		message = "That link is invalid or expired."
	case ErrorTypeNotPublished:
		message = "That session isn't open for booking."
	case ErrorTypeDeadlinePassed:
		message = "It's too close to start time to cancel online. Please reach out to the organizer."
	case ErrorTypeAlreadyCanceled:
		message = "That booking was already canceled."
	case ErrorTypeInvalidPhone:
		message = "That phone number doesn't look right."
	case ErrorTypeBusy:
		message = "Lots of people booking at once. Please try again."
	case ErrorTypeNotFound:
		message = "Couldn't find that."
	case ErrorTypeForbidden:
		message = "You're not allowed to do that."
	default:
		message = "Something went wrong. Please try again later."
	}

	return &GetErrorMessageOutput{
		Message: message,
	}, nil
}
