package notify_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock/mocks"
	notificationRepo "github.com/KirkDiggler/pickup/internal/repositories/notification"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	notifyMocks "github.com/KirkDiggler/pickup/internal/services/notify/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type NotifyServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockClock      *mocks.MockClock
	mockDispatcher *notifyMocks.MockDispatcher
	mr             *miniredis.Miniredis
	client         *redis.Client
	repo           notificationRepo.Repository
	service        notify.Service
	ctx            context.Context
	testTime       time.Time
}

func (s *NotifyServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.mockDispatcher = notifyMocks.NewMockDispatcher(s.mockCtrl)
	s.ctx = context.Background()
	s.testTime = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo, err := notificationRepo.NewRedis(&notificationRepo.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.repo = repo

	svc, err := notify.New(&notify.Config{
		Workers:          2,
		NotificationRepo: repo,
		Dispatcher:       s.mockDispatcher,
		Clock:            s.mockClock,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *NotifyServiceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestNotifyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotifyServiceTestSuite))
}

func (s *NotifyServiceTestSuite) message() *notify.Message {
	return &notify.Message{
		DedupeKey: notify.BookingKey(notify.PurposeConfirmed, "booking-1"),
		To:        "+15551234567",
		Body:      "You're in!",
	}
}

func (s *NotifyServiceTestSuite) TestFireTwiceSendsOnce() {
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), &notify.SendInput{
			To:        "+15551234567",
			Body:      "You're in!",
			DedupeKey: "booking:confirmed:booking-1",
		}).
		Return(&notify.SendOutput{MessageID: "sms-1"}, nil).
		Times(1)

	first, err := s.service.Fire(s.ctx, s.message())
	s.Require().NoError(err)
	s.True(first.Sent)

	second, err := s.service.Fire(s.ctx, s.message())
	s.Require().NoError(err)
	s.True(second.Skipped)

	record, err := s.repo.GetRecord(s.ctx, &notificationRepo.GetRecordInput{DedupeKey: "booking:confirmed:booking-1"})
	s.Require().NoError(err)
	s.Equal("sms-1", record.ResultID)
	s.Empty(record.Error)

	should, err := s.service.ShouldSend(s.ctx, "booking:confirmed:booking-1")
	s.Require().NoError(err)
	s.False(should)
}

func (s *NotifyServiceTestSuite) TestFireConcurrentSameKey() {
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(&notify.SendOutput{MessageID: "sms-1"}, nil).
		Times(1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Fire(s.ctx, s.message())
			s.NoError(err)
		}()
	}
	wg.Wait()
}

func (s *NotifyServiceTestSuite) TestFireDispatchFailureStillRecorded() {
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("carrier unavailable")).
		Times(1)

	out, err := s.service.Fire(s.ctx, s.message())
	s.Require().NoError(err)
	s.False(out.Sent)
	s.EqualError(out.Err, "carrier unavailable")

	record, err := s.repo.GetRecord(s.ctx, &notificationRepo.GetRecordInput{DedupeKey: "booking:confirmed:booking-1"})
	s.Require().NoError(err)
	s.Equal("carrier unavailable", record.Error)

	// No second attempt for the same logical message
	again, err := s.service.Fire(s.ctx, s.message())
	s.Require().NoError(err)
	s.True(again.Skipped)
}

func (s *NotifyServiceTestSuite) TestShouldSendAndMarkSent() {
	key := notify.InviteKey("session-1", "friend-1")

	should, err := s.service.ShouldSend(s.ctx, key)
	s.Require().NoError(err)
	s.True(should)

	s.Require().NoError(s.service.MarkSent(s.ctx, &notify.MarkSentInput{DedupeKey: key, ResultID: "sms-9"}))

	should, err = s.service.ShouldSend(s.ctx, key)
	s.Require().NoError(err)
	s.False(should)

	record, err := s.repo.GetRecord(s.ctx, &notificationRepo.GetRecordInput{DedupeKey: key})
	s.Require().NoError(err)
	s.True(s.testTime.Equal(record.SentAt))
}

func (s *NotifyServiceTestSuite) TestMarkSentKeepsFirstRecord() {
	key := notify.BookingKey(notify.PurposeCanceled, "booking-1")

	s.Require().NoError(s.service.MarkSent(s.ctx, &notify.MarkSentInput{DedupeKey: key, ResultID: "sms-1"}))
	s.Require().NoError(s.service.MarkSent(s.ctx, &notify.MarkSentInput{
		DedupeKey: key,
		Err:       errors.New("late failure report"),
	}))

	record, err := s.repo.GetRecord(s.ctx, &notificationRepo.GetRecordInput{DedupeKey: key})
	s.Require().NoError(err)
	s.Equal("sms-1", record.ResultID)
	s.Empty(record.Error)
}

func (s *NotifyServiceTestSuite) TestFireRejectsInvalidMessage() {
	_, err := s.service.Fire(s.ctx, &notify.Message{DedupeKey: "k", To: "+15551234567"})
	s.ErrorIs(err, notify.ErrInvalidMessage)
}

func (s *NotifyServiceTestSuite) TestEnqueueDeliversOnRun() {
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(&notify.SendOutput{MessageID: "sms-1"}, nil).
		Times(2)

	s.service.Enqueue(s.message())
	s.service.Enqueue(s.message())
	s.service.Enqueue(&notify.Message{
		DedupeKey: notify.BookingKey(notify.PurposeWaitlisted, "booking-2"),
		To:        "+15557654321",
		Body:      "You're on the waitlist.",
	})
	s.service.Enqueue(&notify.Message{})

	// A canceled context makes Run drain the buffer and return
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(s.service.Run(ctx))
}

func (s *NotifyServiceTestSuite) TestEnqueueOverflowIsBounded() {
	svc, err := notify.New(&notify.Config{
		Workers:          1,
		QueueSize:        1,
		NotificationRepo: s.repo,
		Dispatcher:       s.mockDispatcher,
		Clock:            s.mockClock,
	})
	s.Require().NoError(err)

	release := make(chan struct{})
	var sending atomic.Int32
	var sent atomic.Int32
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *notify.SendInput) (*notify.SendOutput, error) {
			sending.Add(1)
			<-release
			sent.Add(1)
			return &notify.SendOutput{MessageID: "sms"}, nil
		}).
		Times(3)

	msg := func(id string) *notify.Message {
		return &notify.Message{
			DedupeKey: notify.BookingKey(notify.PurposeConfirmed, id),
			To:        "+15551234567",
			Body:      "You're in!",
		}
	}

	// first fills the buffer, second goes out of band and blocks in Send
	svc.Enqueue(msg("booking-1"))
	svc.Enqueue(msg("booking-2"))
	s.Eventually(func() bool { return sending.Load() == 1 }, time.Second, 5*time.Millisecond)

	// third has neither a buffer slot nor an overflow slot, so it waits
	enqueued := make(chan struct{})
	go func() {
		svc.Enqueue(msg("booking-3"))
		close(enqueued)
	}()
	s.Never(func() bool {
		select {
		case <-enqueued:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)
	s.Equal(int32(1), sending.Load())

	close(release)
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	s.Eventually(func() bool { return sent.Load() == 3 }, time.Second, 5*time.Millisecond)
	<-enqueued
	cancel()
	s.Require().NoError(<-done)
}

func (s *NotifyServiceTestSuite) TestRunWaitsForOutOfBandDelivery() {
	svc, err := notify.New(&notify.Config{
		Workers:          1,
		QueueSize:        1,
		NotificationRepo: s.repo,
		Dispatcher:       s.mockDispatcher,
		Clock:            s.mockClock,
	})
	s.Require().NoError(err)

	release := make(chan struct{})
	var sent atomic.Int32
	s.mockDispatcher.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *notify.SendInput) (*notify.SendOutput, error) {
			<-release
			sent.Add(1)
			return &notify.SendOutput{MessageID: "sms"}, nil
		}).
		Times(2)

	svc.Enqueue(s.message())
	svc.Enqueue(&notify.Message{
		DedupeKey: notify.BookingKey(notify.PurposeWaitlisted, "booking-2"),
		To:        "+15557654321",
		Body:      "You're on the waitlist.",
	})

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	close(release)

	s.Require().NoError(<-done)
	s.Equal(int32(2), sent.Load())
}

func (s *NotifyServiceTestSuite) TestKeys() {
	s.Equal("booking:promoted:b1", notify.BookingKey(notify.PurposePromoted, "b1"))
	s.Equal("invite:s1:f1", notify.InviteKey("s1", "f1"))
}
