package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/events"
	eventMocks "github.com/KirkDiggler/pickup/internal/events/mocks"
	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	bookingMocks "github.com/KirkDiggler/pickup/internal/services/booking/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WorkerTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockQueue    *eventMocks.MockQueue
	mockPromoter *bookingMocks.MockService
	worker       *Worker
	ctx          context.Context
	delivery     *events.Delivery
}

func (s *WorkerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueue = eventMocks.NewMockQueue(s.mockCtrl)
	s.mockPromoter = bookingMocks.NewMockService(s.mockCtrl)
	s.ctx = context.Background()

	w, err := New(&Config{
		Queue:        s.mockQueue,
		Promoter:     s.mockPromoter,
		PollTimeout:  10 * time.Millisecond,
		RetryBackOff: backoff.NewConstantBackOff(time.Millisecond),
	})
	s.Require().NoError(err)
	s.worker = w

	s.delivery = &events.Delivery{
		Event: &models.BookingCanceledEvent{
			ID:        "event-1",
			SessionID: "session-1",
			BookingID: "booking-1",
		},
	}
}

func TestWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}

func (s *WorkerTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Promoter: s.mockPromoter})
	s.ErrorIs(err, ErrNilQueue)

	_, err = New(&Config{Queue: s.mockQueue})
	s.ErrorIs(err, ErrNilPromoter)
}

func (s *WorkerTestSuite) TestProcessOneNoEvent() {
	s.mockQueue.EXPECT().Receive(gomock.Any(), 10*time.Millisecond).Return(nil, events.ErrNoEvent)

	got, err := s.worker.ProcessOne(s.ctx)
	s.NoError(err)
	s.False(got)
}

func (s *WorkerTestSuite) TestProcessOnePromotesAndAcks() {
	gomock.InOrder(
		s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil),
		s.mockPromoter.EXPECT().Promote(gomock.Any(), &booking.PromoteInput{SessionID: "session-1"}).
			Return(&booking.PromoteOutput{Promoted: &models.Booking{ID: "booking-2"}}, nil),
		s.mockQueue.EXPECT().Ack(gomock.Any(), s.delivery).Return(nil),
	)

	got, err := s.worker.ProcessOne(s.ctx)
	s.NoError(err)
	s.True(got)
}

func (s *WorkerTestSuite) TestProcessOneNothingToPromoteStillAcks() {
	s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil)
	s.mockPromoter.EXPECT().Promote(gomock.Any(), gomock.Any()).Return(&booking.PromoteOutput{}, nil)
	s.mockQueue.EXPECT().Ack(gomock.Any(), s.delivery).Return(nil)

	got, err := s.worker.ProcessOne(s.ctx)
	s.NoError(err)
	s.True(got)
}

func (s *WorkerTestSuite) TestProcessOneFailureNacks() {
	s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil)
	s.mockPromoter.EXPECT().Promote(gomock.Any(), gomock.Any()).Return(nil, booking.ErrBusy)
	s.mockQueue.EXPECT().Nack(gomock.Any(), s.delivery).Return(nil)

	got, err := s.worker.ProcessOne(s.ctx)
	s.ErrorIs(err, booking.ErrBusy)
	s.True(got)
}

func (s *WorkerTestSuite) TestProcessOneUnknownSessionIsDropped() {
	s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil)
	s.mockPromoter.EXPECT().Promote(gomock.Any(), gomock.Any()).Return(nil, booking.ErrSessionNotFound)
	s.mockQueue.EXPECT().Ack(gomock.Any(), s.delivery).Return(nil)

	got, err := s.worker.ProcessOne(s.ctx)
	s.NoError(err)
	s.True(got)
}

func (s *WorkerTestSuite) TestRunRecoversThenProcessesUntilCanceled() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	gomock.InOrder(
		s.mockQueue.EXPECT().Recover(gomock.Any()).Return(1, nil),
		s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil),
		s.mockPromoter.EXPECT().Promote(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")),
		s.mockQueue.EXPECT().Nack(gomock.Any(), s.delivery).Return(nil),
		s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(s.delivery, nil),
		s.mockPromoter.EXPECT().Promote(gomock.Any(), gomock.Any()).Return(&booking.PromoteOutput{}, nil),
		s.mockQueue.EXPECT().Ack(gomock.Any(), s.delivery).Return(nil),
		s.mockQueue.EXPECT().Receive(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, time.Duration) (*events.Delivery, error) {
				cancel()
				return nil, events.ErrNoEvent
			}),
	)

	s.NoError(s.worker.Run(ctx))
}

func (s *WorkerTestSuite) TestRunRecoverFailure() {
	s.mockQueue.EXPECT().Recover(gomock.Any()).Return(0, errors.New("redis down"))

	s.Error(s.worker.Run(s.ctx))
}

func (s *WorkerTestSuite) TestProcessOneWithRedisQueue() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	queue, err := events.NewRedis(&events.Config{RedisClient: client})
	s.Require().NoError(err)

	w, err := New(&Config{
		Queue:       queue,
		Promoter:    s.mockPromoter,
		PollTimeout: 100 * time.Millisecond,
	})
	s.Require().NoError(err)

	s.Require().NoError(queue.PublishBookingCanceled(s.ctx, s.delivery.Event))
	s.mockPromoter.EXPECT().Promote(gomock.Any(), &booking.PromoteInput{SessionID: "session-1"}).
		Return(&booking.PromoteOutput{}, nil)

	got, err := w.ProcessOne(s.ctx)
	s.Require().NoError(err)
	s.True(got)

	// Acked events are gone from both lists
	recovered, err := queue.Recover(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, recovered)

	got, err = w.ProcessOne(s.ctx)
	s.NoError(err)
	s.False(got)
}
