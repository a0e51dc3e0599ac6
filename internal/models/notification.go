package models

import (
	"time"
)

// NotificationRecord marks a dedupe key as already sent
type NotificationRecord struct {
	// DedupeKey identifies the logical message
	DedupeKey string

	// SentAt is when the send attempt completed
	SentAt time.Time

	// ResultID is the dispatcher's message identifier, if any
	ResultID string

	// Error is the dispatcher error text when the attempt failed
	Error string
}
