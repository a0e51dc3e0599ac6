package notify

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	notificationRepo "github.com/KirkDiggler/pickup/internal/repositories/notification"
	"go.uber.org/zap"
)

// Purpose names the kind of booking message in its dedupe key
type Purpose string

const (
	PurposeConfirmed  Purpose = "confirmed"
	PurposeWaitlisted Purpose = "waitlisted"
	PurposePromoted   Purpose = "promoted"
	PurposeCanceled   Purpose = "canceled"
)

// BookingKey is the dedupe key for a booking lifecycle message
func BookingKey(purpose Purpose, bookingID string) string {
	return fmt.Sprintf("booking:%s:%s", purpose, bookingID)
}

// InviteKey is the dedupe key for a session invite to a friend
func InviteKey(sessionID, friendID string) string {
	return fmt.Sprintf("invite:%s:%s", sessionID, friendID)
}

// Message is one logical notification
type Message struct {
	DedupeKey string

	// To is an E.164 phone number
	To   string
	Body string
}

// Config holds configuration for the notification service
type Config struct {
	// Workers is the number of concurrent senders in Run; defaults to 4
	Workers int

	// QueueSize bounds the Enqueue buffer; defaults to 256
	QueueSize int

	// ClaimLease bounds how long a crashed send blocks its key; defaults to 5m
	ClaimLease time.Duration

	// SendTimeout bounds each dispatch; defaults to 30s
	SendTimeout time.Duration

	// Repository dependencies
	NotificationRepo notificationRepo.Repository

	// Service dependencies
	Dispatcher Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

type SendInput struct {
	To        string
	Body      string
	DedupeKey string
}

type SendOutput struct {
	// MessageID is the transport's identifier, if it has one
	MessageID string
}

type MarkSentInput struct {
	DedupeKey string
	ResultID  string

	// Err is the dispatch failure, if any
	Err error
}

type FireOutput struct {
	// Skipped is set when the key was already sent or claimed
	Skipped bool

	// Sent is set when the dispatcher accepted the message
	Sent bool

	// Err is the dispatch failure when neither flag is set
	Err error
}
