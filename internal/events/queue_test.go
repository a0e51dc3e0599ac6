package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// failCommand makes every call of one Redis command fail
type failCommand string

func (f failCommand) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (f failCommand) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == string(f) {
			err := errors.New("connection reset")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (f failCommand) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

type RedisQueueTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	queue   Queue
	testNow time.Time
}

func (s *RedisQueueTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	queue, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.queue = queue

	s.testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
}

func (s *RedisQueueTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisQueueTestSuite(t *testing.T) {
	suite.Run(t, new(RedisQueueTestSuite))
}

func (s *RedisQueueTestSuite) event(id string) *models.BookingCanceledEvent {
	return &models.BookingCanceledEvent{
		ID:             id,
		SessionID:      "session-1",
		BookingID:      "booking-" + id,
		PreviousStatus: models.BookingStatusConfirmed,
		Actor:          models.ActorUser,
		OccurredAt:     s.testNow,
	}
}

func (s *RedisQueueTestSuite) TestPublishReceiveAckInOrder() {
	ctx := context.Background()
	s.Require().NoError(s.queue.PublishBookingCanceled(ctx, s.event("e1")))
	s.Require().NoError(s.queue.PublishBookingCanceled(ctx, s.event("e2")))

	first, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Equal("e1", first.Event.ID)
	s.Equal("session-1", first.Event.SessionID)

	second, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Equal("e2", second.Event.ID)

	s.Require().NoError(s.queue.Ack(ctx, first))
	s.Require().NoError(s.queue.Ack(ctx, second))

	_, err = s.queue.Receive(ctx, 100*time.Millisecond)
	s.ErrorIs(err, ErrNoEvent)

	n, err := s.client.LLen(ctx, defaultQueueName+":processing").Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisQueueTestSuite) TestNackRedelivers() {
	ctx := context.Background()
	s.Require().NoError(s.queue.PublishBookingCanceled(ctx, s.event("e1")))

	delivery, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Require().NoError(s.queue.Nack(ctx, delivery))

	again, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Equal("e1", again.Event.ID)
}

func (s *RedisQueueTestSuite) TestRecoverMovesUnackedBack() {
	ctx := context.Background()
	s.Require().NoError(s.queue.PublishBookingCanceled(ctx, s.event("e1")))
	s.Require().NoError(s.queue.PublishBookingCanceled(ctx, s.event("e2")))

	// Simulate a consumer that received both and crashed
	_, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	_, err = s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)

	moved, err := s.queue.Recover(ctx)
	s.Require().NoError(err)
	s.Equal(2, moved)

	first, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Equal("e1", first.Event.ID)
}

func (s *RedisQueueTestSuite) TestPublishRejectsEmptySession() {
	err := s.queue.PublishBookingCanceled(context.Background(), &models.BookingCanceledEvent{ID: "e1"})
	s.Error(err)
}

func (s *RedisQueueTestSuite) TestReceiveDropsUndecodablePayload() {
	ctx := context.Background()
	s.Require().NoError(s.client.LPush(ctx, defaultQueueName, "not json").Err())

	_, err := s.queue.Receive(ctx, 100*time.Millisecond)
	s.Error(err)

	n, err := s.client.LLen(ctx, defaultQueueName+":processing").Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisQueueTestSuite) TestReceiveLogsFailedDrop() {
	ctx := context.Background()
	s.Require().NoError(s.client.LPush(ctx, defaultQueueName, "not json").Err())

	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	defer client.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	queue, err := NewRedis(&Config{
		RedisClient: client,
		Logger:      zap.New(core),
	})
	s.Require().NoError(err)
	client.AddHook(failCommand("lrem"))

	_, err = queue.Receive(ctx, 100*time.Millisecond)
	s.Error(err)

	entries := logs.FilterMessage("failed to drop undecodable event").All()
	s.Require().Len(entries, 1)
	s.Equal(zapcore.ErrorLevel, entries[0].Level)
	s.Equal("connection reset", entries[0].ContextMap()["error"])

	// The payload stays in the processing list for Recover to pick up
	n, err := s.client.LLen(ctx, defaultQueueName+":processing").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
