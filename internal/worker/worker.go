// Package worker consumes booking cancellation events and promotes the
// waitlist of the affected session.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/events"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const defaultPollTimeout = 5 * time.Second

// WorkerError is a custom error type for worker errors
type WorkerError string

// Error implements the error interface
func (e WorkerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig   WorkerError = "config cannot be nil"
	ErrNilQueue    WorkerError = "event queue cannot be nil"
	ErrNilPromoter WorkerError = "promoter cannot be nil"
)

// Promoter runs waitlist promotion for a session
type Promoter interface {
	Promote(ctx context.Context, input *booking.PromoteInput) (*booking.PromoteOutput, error)
}

// Config holds configuration for the promotion worker
type Config struct {
	Queue    events.Queue
	Promoter Promoter

	// PollTimeout bounds each blocking receive; defaults to 5s
	PollTimeout time.Duration

	// RetryBackOff spaces out retries after a failed delivery; defaults to
	// an exponential backoff
	RetryBackOff backoff.BackOff

	Logger *zap.Logger
}

// Worker applies promotion for every cancellation event it receives
type Worker struct {
	queue       events.Queue
	promoter    Promoter
	pollTimeout time.Duration
	retry       backoff.BackOff
	logger      *zap.Logger
}

// New creates a promotion worker
func New(cfg *Config) (*Worker, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Queue == nil {
		return nil, ErrNilQueue
	}

	if cfg.Promoter == nil {
		return nil, ErrNilPromoter
	}

	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	retry := cfg.RetryBackOff
	if retry == nil {
		retry = backoff.NewExponentialBackOff()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		queue:       cfg.Queue,
		promoter:    cfg.Promoter,
		pollTimeout: timeout,
		retry:       retry,
		logger:      logger,
	}, nil
}

// Run re-queues deliveries left over from a previous process, then
// processes events until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	recovered, err := w.queue.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover in-flight events: %w", err)
	}
	if recovered > 0 {
		w.logger.Info("re-queued in-flight events", zap.Int("count", recovered))
	}

	w.retry.Reset()
	for {
		if ctx.Err() != nil {
			return nil
		}

		_, err := w.ProcessOne(ctx)
		if err == nil {
			w.retry.Reset()
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		wait := w.retry.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		w.logger.Warn("promotion worker retrying", zap.Duration("wait", wait), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// ProcessOne handles at most one event. It reports whether an event was
// received.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	delivery, err := w.queue.Receive(ctx, w.pollTimeout)
	if err != nil {
		if errors.Is(err, events.ErrNoEvent) {
			return false, nil
		}
		return false, fmt.Errorf("failed to receive event: %w", err)
	}

	event := delivery.Event
	logger := w.logger.With(
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.String("booking_id", event.BookingID),
	)

	out, err := w.promoter.Promote(ctx, &booking.PromoteInput{SessionID: event.SessionID})
	if err != nil {
		if errors.Is(err, booking.ErrSessionNotFound) {
			logger.Warn("dropping event for unknown session")
			return true, w.ack(ctx, delivery)
		}

		logger.Error("promotion failed, requeueing", zap.Error(err))
		if nackErr := w.queue.Nack(context.WithoutCancel(ctx), delivery); nackErr != nil {
			return true, fmt.Errorf("failed to nack event: %w", nackErr)
		}
		return true, fmt.Errorf("failed to promote: %w", err)
	}

	if out.Promoted != nil {
		logger.Info("waitlist promoted", zap.String("promoted_booking_id", out.Promoted.ID))
	}

	return true, w.ack(ctx, delivery)
}

func (w *Worker) ack(ctx context.Context, delivery *events.Delivery) error {
	if err := w.queue.Ack(context.WithoutCancel(ctx), delivery); err != nil {
		return fmt.Errorf("failed to ack event: %w", err)
	}
	return nil
}
