package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/models"
	notificationRepo "github.com/KirkDiggler/pickup/internal/repositories/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultClaimLease  = 5 * time.Minute
	defaultSendTimeout = 30 * time.Second
)

// service implements the Service interface
type service struct {
	repo        notificationRepo.Repository
	dispatcher  Dispatcher
	clock       clock.Clock
	logger      *zap.Logger
	workers     int
	claimLease  time.Duration
	sendTimeout time.Duration
	queue       chan *Message

	// overflow bounds out-of-band deliveries while the queue is full
	overflow chan struct{}
	inflight sync.WaitGroup
}

// New creates a new notification service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.NotificationRepo == nil {
		return nil, ErrNilRepo
	}

	if cfg.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	claimLease := cfg.ClaimLease
	if claimLease <= 0 {
		claimLease = defaultClaimLease
	}

	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		repo:        cfg.NotificationRepo,
		dispatcher:  cfg.Dispatcher,
		clock:       cfg.Clock,
		logger:      logger,
		workers:     workers,
		claimLease:  claimLease,
		sendTimeout: sendTimeout,
		queue:       make(chan *Message, queueSize),
		overflow:    make(chan struct{}, workers),
	}, nil
}

func validate(msg *Message) error {
	if msg == nil || msg.DedupeKey == "" || msg.To == "" || msg.Body == "" {
		return ErrInvalidMessage
	}
	return nil
}

// ShouldSend reports whether nothing has been sent or claimed for a key
func (s *service) ShouldSend(ctx context.Context, dedupeKey string) (bool, error) {
	if dedupeKey == "" {
		return false, ErrInvalidMessage
	}

	exists, err := s.repo.Exists(ctx, &notificationRepo.ExistsInput{
		DedupeKey: dedupeKey,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check dedupe key: %w", err)
	}

	return !exists, nil
}

// MarkSent records the outcome for a key. The first record wins; marking a
// key that already has one is a no-op.
func (s *service) MarkSent(ctx context.Context, input *MarkSentInput) error {
	if input == nil || input.DedupeKey == "" {
		return ErrInvalidMessage
	}

	_, err := s.repo.GetRecord(ctx, &notificationRepo.GetRecordInput{
		DedupeKey: input.DedupeKey,
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, notificationRepo.ErrRecordNotFound) {
		return fmt.Errorf("failed to read notification record: %w", err)
	}

	record := &models.NotificationRecord{
		DedupeKey: input.DedupeKey,
		SentAt:    s.clock.Now(),
		ResultID:  input.ResultID,
	}
	if input.Err != nil {
		record.Error = input.Err.Error()
	}

	if err := s.repo.PutRecord(ctx, &notificationRepo.PutRecordInput{
		Record: record,
	}); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

// Fire claims the key, dispatches and records the outcome. A failed dispatch
// is still recorded, so the message is never retried through this key.
func (s *service) Fire(ctx context.Context, msg *Message) (*FireOutput, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}

	claimed, err := s.repo.Claim(ctx, &notificationRepo.ClaimInput{
		DedupeKey: msg.DedupeKey,
		Lease:     s.claimLease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim dedupe key: %w", err)
	}

	if !claimed {
		s.logger.Debug("notification already sent",
			zap.String("dedupe_key", msg.DedupeKey),
		)
		return &FireOutput{Skipped: true}, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	out, sendErr := s.dispatcher.Send(sendCtx, &SendInput{
		To:        msg.To,
		Body:      msg.Body,
		DedupeKey: msg.DedupeKey,
	})
	cancel()

	resultID := ""
	if out != nil {
		resultID = out.MessageID
	}

	// The outcome is recorded even when the caller has gone away
	if err := s.MarkSent(context.WithoutCancel(ctx), &MarkSentInput{
		DedupeKey: msg.DedupeKey,
		ResultID:  resultID,
		Err:       sendErr,
	}); err != nil {
		return nil, err
	}

	if sendErr != nil {
		s.logger.Error("notification dispatch failed",
			zap.String("dedupe_key", msg.DedupeKey),
			zap.String("to", maskRecipient(msg.To)),
			zap.Error(sendErr),
		)
		return &FireOutput{Err: sendErr}, nil
	}

	return &FireOutput{Sent: true}, nil
}

// Enqueue hands a message to the worker pool. When the buffer is full the
// message goes out on one of a bounded number of extra goroutines; when those
// are busy too, the caller waits for a buffer slot.
func (s *service) Enqueue(msg *Message) {
	if err := validate(msg); err != nil {
		s.logger.Warn("dropping invalid notification", zap.Error(err))
		return
	}

	select {
	case s.queue <- msg:
		return
	default:
	}

	select {
	case s.overflow <- struct{}{}:
		s.logger.Warn("notification queue full, delivering out of band",
			zap.String("dedupe_key", msg.DedupeKey),
		)
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer func() { <-s.overflow }()

			ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
			defer cancel()
			s.deliver(ctx, msg)
		}()
	default:
		s.logger.Warn("notification queue saturated, waiting for a slot",
			zap.String("dedupe_key", msg.DedupeKey),
		)
		s.queue <- msg
	}
}

// Run delivers enqueued messages until ctx is done, then drains what is left
// and waits for out-of-band deliveries. Cancel ctx only after every producer
// has stopped calling Enqueue.
func (s *service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case msg := <-s.queue:
					// a message taken off the queue is finished even during shutdown
					s.deliver(context.WithoutCancel(gctx), msg)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Producers are stopped before ctx is canceled, so what is buffered now is
	// everything that is left
	drainCtx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()
	for {
		select {
		case msg := <-s.queue:
			s.deliver(drainCtx, msg)
		default:
			s.inflight.Wait()
			return nil
		}
	}
}

func (s *service) deliver(ctx context.Context, msg *Message) {
	if _, err := s.Fire(ctx, msg); err != nil {
		s.logger.Error("notification not delivered",
			zap.String("dedupe_key", msg.DedupeKey),
			zap.Error(err),
		)
	}
}

// maskRecipient keeps the last four characters of a phone number for logs
func maskRecipient(to string) string {
	if len(to) <= 4 {
		return "***"
	}
	return "***" + to[len(to)-4:]
}
