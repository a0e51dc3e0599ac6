package notify

//go:generate mockgen -package=mocks -destination=mocks/mock_notify.go github.com/KirkDiggler/pickup/internal/services/notify Dispatcher,Enqueuer

import (
	"context"
)

// Dispatcher delivers a message over some transport (SMS, log, chat)
type Dispatcher interface {
	Send(ctx context.Context, input *SendInput) (*SendOutput, error)
}

// Enqueuer hands a message off for asynchronous delivery
type Enqueuer interface {
	Enqueue(msg *Message)
}

// Service gates delivery so each logical message goes out at most once
type Service interface {
	Enqueuer

	// ShouldSend reports whether nothing has been sent or claimed for a key
	ShouldSend(ctx context.Context, dedupeKey string) (bool, error)

	// MarkSent records the outcome for a key
	MarkSent(ctx context.Context, input *MarkSentInput) error

	// Fire claims the key, dispatches and records the outcome
	Fire(ctx context.Context, msg *Message) (*FireOutput, error)

	// Run delivers enqueued messages until ctx is done
	Run(ctx context.Context) error
}
