// Package events carries booking cancellations to the promotion worker over a
// Redis reliable queue. Deliveries are at-least-once: a received event sits in
// a processing list until it is acknowledged.
package events

//go:generate mockgen -package=mocks -destination=mocks/mock_queue.go github.com/KirkDiggler/pickup/internal/events Publisher,Queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/logging"
	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultQueueName = "events:booking_canceled"
)

var (
	// ErrNoEvent is returned by Receive when nothing arrived before the timeout
	ErrNoEvent = errors.New("no event available")
)

// Publisher publishes cancellation events
type Publisher interface {
	PublishBookingCanceled(ctx context.Context, event *models.BookingCanceledEvent) error
}

// Queue is the consuming side of the cancellation queue
type Queue interface {
	Publisher

	// Receive blocks up to timeout for the next event
	Receive(ctx context.Context, timeout time.Duration) (*Delivery, error)

	// Ack removes a handled delivery from the processing list
	Ack(ctx context.Context, delivery *Delivery) error

	// Nack puts a delivery back at the tail of the queue
	Nack(ctx context.Context, delivery *Delivery) error

	// Recover moves everything left in the processing list back to the queue.
	// Called once on consumer start to pick up work a crashed consumer held.
	Recover(ctx context.Context) (int, error)
}

// Delivery is one received event
type Delivery struct {
	Event *models.BookingCanceledEvent

	// raw is the exact payload, needed to remove it from the processing list
	raw string
}

// Config holds configuration for the Redis queue
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// QueueName is the list key; the processing list is QueueName + ":processing"
	QueueName string

	Logger *zap.Logger
}

type redisQueue struct {
	client     *redis.Client
	queue      string
	processing string
	logger     *zap.Logger
}

// NewRedis creates a new Redis-backed cancellation queue
func NewRedis(cfg *Config) (*redisQueue, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	name := cfg.QueueName
	if name == "" {
		name = defaultQueueName
	}

	return &redisQueue{
		client:     cfg.RedisClient,
		queue:      name,
		processing: name + ":processing",
		logger:     logging.OrNop(cfg.Logger),
	}, nil
}

// PublishBookingCanceled pushes an event onto the head of the queue
func (q *redisQueue) PublishBookingCanceled(ctx context.Context, event *models.BookingCanceledEvent) error {
	if event == nil || event.SessionID == "" {
		return errors.New("event and session ID cannot be empty")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := q.client.LPush(ctx, q.queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Receive atomically moves the oldest event into the processing list
func (q *redisQueue) Receive(ctx context.Context, timeout time.Duration) (*Delivery, error) {
	raw, err := q.client.BLMove(ctx, q.queue, q.processing, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoEvent
		}
		return nil, fmt.Errorf("failed to receive event: %w", err)
	}

	var event models.BookingCanceledEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		// A payload that never decodes would loop forever; drop it
		if remErr := q.client.LRem(ctx, q.processing, 1, raw).Err(); remErr != nil {
			q.logger.Error("failed to drop undecodable event",
				zap.String("processing", q.processing),
				zap.Error(remErr),
			)
		}
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &Delivery{
		Event: &event,
		raw:   raw,
	}, nil
}

// Ack removes a handled delivery from the processing list
func (q *redisQueue) Ack(ctx context.Context, delivery *Delivery) error {
	if delivery == nil {
		return errors.New("delivery cannot be nil")
	}

	if err := q.client.LRem(ctx, q.processing, 1, delivery.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack event: %w", err)
	}

	return nil
}

// Nack returns a delivery to the queue for another attempt
func (q *redisQueue) Nack(ctx context.Context, delivery *Delivery) error {
	if delivery == nil {
		return errors.New("delivery cannot be nil")
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing, 1, delivery.raw)
		pipe.LPush(ctx, q.queue, delivery.raw)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to nack event: %w", err)
	}

	return nil
}

// Recover moves every processing entry back to the queue
func (q *redisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.queue, "LEFT", "RIGHT").Err()
		if err != nil {
			if err == redis.Nil {
				return moved, nil
			}
			return moved, fmt.Errorf("failed to recover events: %w", err)
		}
		moved++
	}
}
