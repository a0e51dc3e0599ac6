package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

const testSessionID = "session-1"

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) create(id, phone string, capacity int) *CreateBookingOutput {
	out, err := s.repo.CreateBooking(context.Background(), &CreateBookingInput{
		Booking: &models.Booking{
			ID:        id,
			SessionID: testSessionID,
			FriendID:  "friend-" + id,
			Phone:     phone,
			CreatedAt: s.testNow,
		},
		Capacity: capacity,
	})
	s.Require().NoError(err)
	return out
}

func (s *RedisRepositoryTestSuite) cancel(id string) *CancelBookingOutput {
	out, err := s.repo.CancelBooking(context.Background(), &CancelBookingInput{
		BookingID:  id,
		CanceledAt: s.testNow.Add(time.Minute),
		CanceledBy: models.ActorUser,
	})
	s.Require().NoError(err)
	return out
}

func (s *RedisRepositoryTestSuite) promote(capacity int) *models.Booking {
	out, err := s.repo.PromoteNext(context.Background(), &PromoteNextInput{
		SessionID:  testSessionID,
		Capacity:   capacity,
		PromotedAt: s.testNow.Add(2 * time.Minute),
	})
	s.Require().NoError(err)
	return out.Promoted
}

func (s *RedisRepositoryTestSuite) stats() *SessionStats {
	stats, err := s.repo.GetSessionStats(context.Background(), &GetSessionStatsInput{SessionID: testSessionID})
	s.Require().NoError(err)
	return stats
}

func (s *RedisRepositoryTestSuite) TestCreateBookingConfirmedThenWaitlisted() {
	a := s.create("a", "+15550000001", 2)
	b := s.create("b", "+15550000002", 2)
	c := s.create("c", "+15550000003", 2)
	d := s.create("d", "+15550000004", 2)

	s.Equal(models.BookingStatusConfirmed, a.Booking.Status)
	s.Equal(models.BookingStatusConfirmed, b.Booking.Status)
	s.Equal(models.BookingStatusWaitlisted, c.Booking.Status)
	s.Equal(models.BookingStatusWaitlisted, d.Booking.Status)

	s.Equal(0, a.WaitlistPosition)
	s.Equal(1, c.WaitlistPosition)
	s.Equal(2, d.WaitlistPosition)

	s.Equal(int64(1), a.Booking.Seq)
	s.Equal(int64(4), d.Booking.Seq)

	stats := s.stats()
	s.Equal(2, stats.Confirmed)
	s.Equal(2, stats.Waitlisted)
	s.Equal(int64(4), stats.Seq)
}

func (s *RedisRepositoryTestSuite) TestCreateBookingSamePhoneReturnsExisting() {
	s.create("a", "+15550000001", 1)
	first := s.create("b", "+15550000002", 1)
	s.Require().Equal(models.BookingStatusWaitlisted, first.Booking.Status)

	again := s.create("b2", "+15550000002", 1)
	s.True(again.AlreadyExists)
	s.Equal("b", again.Booking.ID)
	s.Equal(models.BookingStatusWaitlisted, again.Booking.Status)
	s.Equal(1, again.WaitlistPosition)

	_, err := s.repo.GetBooking(context.Background(), &GetBookingInput{BookingID: "b2"})
	s.ErrorIs(err, ErrBookingNotFound)

	stats := s.stats()
	s.Equal(1, stats.Confirmed)
	s.Equal(1, stats.Waitlisted)
}

func (s *RedisRepositoryTestSuite) TestCancelBookingReleasesSeatAndPhone() {
	s.create("a", "+15550000001", 1)

	out := s.cancel("a")
	s.Equal(models.BookingStatusConfirmed, out.PreviousStatus)
	s.Equal(models.BookingStatusCanceled, out.Booking.Status)
	s.Require().NotNil(out.Booking.CanceledAt)
	s.Equal(models.ActorUser, out.Booking.CanceledBy)

	s.Equal(0, s.stats().Confirmed)

	_, err := s.repo.GetActiveBooking(context.Background(), &GetActiveBookingInput{
		SessionID: testSessionID,
		Phone:     "+15550000001",
	})
	s.ErrorIs(err, ErrBookingNotFound)

	// The same phone can book again and gets a fresh sequence number
	rebooked := s.create("a2", "+15550000001", 1)
	s.False(rebooked.AlreadyExists)
	s.Equal(models.BookingStatusConfirmed, rebooked.Booking.Status)
	s.Equal(int64(2), rebooked.Booking.Seq)
}

func (s *RedisRepositoryTestSuite) TestCancelBookingTwice() {
	s.create("a", "+15550000001", 1)
	s.cancel("a")

	_, err := s.repo.CancelBooking(context.Background(), &CancelBookingInput{
		BookingID:  "a",
		CanceledAt: s.testNow,
		CanceledBy: models.ActorAdmin,
	})
	s.ErrorIs(err, ErrAlreadyCanceled)

	stored, err := s.repo.GetBooking(context.Background(), &GetBookingInput{BookingID: "a"})
	s.Require().NoError(err)
	s.Equal(models.ActorUser, stored.CanceledBy)
	s.Equal(0, s.stats().Confirmed)
}

func (s *RedisRepositoryTestSuite) TestCancelBookingNotFound() {
	_, err := s.repo.CancelBooking(context.Background(), &CancelBookingInput{BookingID: "missing"})
	s.ErrorIs(err, ErrBookingNotFound)
}

func (s *RedisRepositoryTestSuite) TestCancelWaitlistedBookingKeepsSeats() {
	s.create("a", "+15550000001", 1)
	s.create("w", "+15550000002", 1)

	out := s.cancel("w")
	s.Equal(models.BookingStatusWaitlisted, out.PreviousStatus)

	stats := s.stats()
	s.Equal(1, stats.Confirmed)
	s.Equal(0, stats.Waitlisted)
	s.Nil(s.promote(1))
}

func (s *RedisRepositoryTestSuite) TestPromoteNextFIFO() {
	s.create("a", "+15550000001", 3)
	s.create("b", "+15550000002", 3)
	s.create("c", "+15550000003", 3)
	s.create("w1", "+15550000004", 3)
	s.create("w2", "+15550000005", 3)

	// Nothing to do while full
	s.Nil(s.promote(3))

	s.cancel("a")
	promoted := s.promote(3)
	s.Require().NotNil(promoted)
	s.Equal("w1", promoted.ID)
	s.Equal(models.BookingStatusConfirmed, promoted.Status)
	s.Require().NotNil(promoted.PromotedAt)

	// Re-running for the same cancellation is a no-op
	s.Nil(s.promote(3))
	s.Nil(s.promote(3))

	s.cancel("b")
	promoted = s.promote(3)
	s.Require().NotNil(promoted)
	s.Equal("w2", promoted.ID)

	s.cancel("c")
	s.Nil(s.promote(3))

	stats := s.stats()
	s.Equal(2, stats.Confirmed)
	s.Equal(0, stats.Waitlisted)
}

func (s *RedisRepositoryTestSuite) TestCreateBookingDoesNotJumpWaitlist() {
	s.create("a", "+15550000001", 1)
	s.create("d", "+15550000002", 1)

	// The seat a frees belongs to d even before promotion has run
	s.cancel("a")
	e := s.create("e", "+15550000003", 1)
	s.Equal(models.BookingStatusWaitlisted, e.Booking.Status)
	s.Equal(2, e.WaitlistPosition)

	promoted := s.promote(1)
	s.Require().NotNil(promoted)
	s.Equal("d", promoted.ID)
	s.Nil(s.promote(1))

	stored, err := s.repo.GetBooking(context.Background(), &GetBookingInput{BookingID: "e"})
	s.Require().NoError(err)
	s.Equal(models.BookingStatusWaitlisted, stored.Status)

	stats := s.stats()
	s.Equal(1, stats.Confirmed)
	s.Equal(1, stats.Waitlisted)
}

func (s *RedisRepositoryTestSuite) TestListSessionBookingsInSeqOrder() {
	s.create("a", "+15550000001", 1)
	s.create("b", "+15550000002", 1)
	s.create("c", "+15550000003", 1)
	s.cancel("a")
	s.promote(1)

	out, err := s.repo.ListSessionBookings(context.Background(), &ListSessionBookingsInput{SessionID: testSessionID})
	s.Require().NoError(err)
	s.Require().Len(out.Bookings, 3)
	s.Equal("a", out.Bookings[0].ID)
	s.Equal(models.BookingStatusCanceled, out.Bookings[0].Status)
	s.Equal("b", out.Bookings[1].ID)
	s.Equal(models.BookingStatusConfirmed, out.Bookings[1].Status)
	s.Equal("c", out.Bookings[2].ID)
	s.Equal(models.BookingStatusWaitlisted, out.Bookings[2].Status)
}

func (s *RedisRepositoryTestSuite) TestConcurrentCreatesNeverExceedCapacity() {
	const (
		capacity = 5
		writers  = 20
	)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[models.BookingStatus]int{}
		seqs     = map[int64]bool{}
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				out, err := s.repo.CreateBooking(context.Background(), &CreateBookingInput{
					Booking: &models.Booking{
						ID:        fmt.Sprintf("booking-%d", i),
						SessionID: testSessionID,
						FriendID:  fmt.Sprintf("friend-%d", i),
						Phone:     fmt.Sprintf("+1555000%04d", i),
						CreatedAt: s.testNow,
					},
					Capacity: capacity,
				})
				if errors.Is(err, ErrConflict) {
					continue
				}
				if err != nil {
					s.T().Errorf("create booking %d: %v", i, err)
					return
				}

				mu.Lock()
				statuses[out.Booking.Status]++
				seqs[out.Booking.Seq] = true
				mu.Unlock()
				return
			}
		}(i)
	}
	wg.Wait()

	s.Equal(capacity, statuses[models.BookingStatusConfirmed])
	s.Equal(writers-capacity, statuses[models.BookingStatusWaitlisted])
	s.Len(seqs, writers)

	stats := s.stats()
	s.Equal(capacity, stats.Confirmed)
	s.Equal(writers-capacity, stats.Waitlisted)
}

func (s *RedisRepositoryTestSuite) TestConcurrentCreatesSamePhone() {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				_, err := s.repo.CreateBooking(context.Background(), &CreateBookingInput{
					Booking: &models.Booking{
						ID:        fmt.Sprintf("booking-%d", i),
						SessionID: testSessionID,
						Phone:     "+15550000001",
						CreatedAt: s.testNow,
					},
					Capacity: 3,
				})
				if !errors.Is(err, ErrConflict) {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	out, err := s.repo.ListSessionBookings(context.Background(), &ListSessionBookingsInput{SessionID: testSessionID})
	s.Require().NoError(err)
	s.Len(out.Bookings, 1)
	s.Equal(1, s.stats().Confirmed)
}
