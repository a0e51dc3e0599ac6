package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/KirkDiggler/pickup/internal/services/notify"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	defaultMaxTries        = 4
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
)

// ErrPermanent marks a send failure that retrying cannot fix, such as an
// invalid destination number. Wrap it to stop retries early.
var ErrPermanent = errors.New("permanent dispatch failure")

// RetryConfig holds configuration for RetryingDispatcher
type RetryConfig struct {
	// MaxTries includes the first attempt; defaults to 4
	MaxTries uint

	// InitialInterval and MaxInterval shape the exponential backoff
	InitialInterval time.Duration
	MaxInterval     time.Duration

	Logger *zap.Logger
}

// RetryingDispatcher retries a wrapped dispatcher with exponential backoff
type RetryingDispatcher struct {
	next     notify.Dispatcher
	maxTries uint
	initial  time.Duration
	max      time.Duration
	logger   *zap.Logger
}

// NewRetryingDispatcher wraps next with retries
func NewRetryingDispatcher(next notify.Dispatcher, cfg *RetryConfig) *RetryingDispatcher {
	if cfg == nil {
		cfg = &RetryConfig{}
	}

	d := &RetryingDispatcher{
		next:     next,
		maxTries: cfg.MaxTries,
		initial:  cfg.InitialInterval,
		max:      cfg.MaxInterval,
		logger:   cfg.Logger,
	}
	if d.maxTries == 0 {
		d.maxTries = defaultMaxTries
	}
	if d.initial <= 0 {
		d.initial = defaultInitialInterval
	}
	if d.max <= 0 {
		d.max = defaultMaxInterval
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	return d
}

// Send delivers through the wrapped dispatcher, retrying transient failures
// until the tries run out or ctx is done
func (d *RetryingDispatcher) Send(ctx context.Context, input *notify.SendInput) (*notify.SendOutput, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initial
	b.MaxInterval = d.max

	op := func() (*notify.SendOutput, error) {
		out, err := d.next.Send(ctx, input)
		if err != nil && errors.Is(err, ErrPermanent) {
			return nil, backoff.Permanent(err)
		}
		return out, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(d.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			d.logger.Warn("dispatch failed, retrying",
				zap.String("dedupe_key", input.DedupeKey),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
}
