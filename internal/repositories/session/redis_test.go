package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

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

func (s *RedisRepositoryTestSuite) newSession(id, date string) *models.Session {
	day, err := time.Parse(dateLayout, date)
	s.Require().NoError(err)

	return &models.Session{
		ID:        id,
		Date:      date,
		StartsAt:  day.Add(18 * time.Hour),
		EndsAt:    day.Add(20 * time.Hour),
		Capacity:  10,
		Status:    models.SessionStatusDraft,
		Location:  "Riverside courts",
		CreatedAt: s.testNow,
		UpdatedAt: s.testNow,
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGetSession() {
	ctx := context.Background()
	sess := s.newSession("session-1", "2026-10-21")

	err := s.repo.CreateSession(ctx, &CreateSessionInput{Session: sess})
	s.Require().NoError(err)

	byID, err := s.repo.GetSession(ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Equal("2026-10-21", byID.Date)
	s.Equal(10, byID.Capacity)
	s.True(sess.StartsAt.Equal(byID.StartsAt))

	byDate, err := s.repo.GetSessionByDate(ctx, &GetSessionByDateInput{Date: "2026-10-21"})
	s.Require().NoError(err)
	s.Equal("session-1", byDate.ID)
}

func (s *RedisRepositoryTestSuite) TestGetSessionNotFound() {
	ctx := context.Background()

	_, err := s.repo.GetSession(ctx, &GetSessionInput{SessionID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByDate(ctx, &GetSessionByDateInput{Date: "2026-10-21"})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestCreateSessionDuplicateDate() {
	ctx := context.Background()

	s.Require().NoError(s.repo.CreateSession(ctx, &CreateSessionInput{
		Session: s.newSession("session-1", "2026-10-21"),
	}))

	err := s.repo.CreateSession(ctx, &CreateSessionInput{
		Session: s.newSession("session-2", "2026-10-21"),
	})
	s.ErrorIs(err, ErrDuplicateDate)

	_, err = s.repo.GetSession(ctx, &GetSessionInput{SessionID: "session-2"})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestCreateSessionConcurrentSameDate() {
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.repo.CreateSession(ctx, &CreateSessionInput{
				Session: s.newSession(string(rune('a'+i)), "2026-10-21"),
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			if errors.Is(err, ErrDuplicateDate) {
				// the winner is readable as soon as the date is taken
				_, err = s.repo.GetSessionByDate(ctx, &GetSessionByDateInput{Date: "2026-10-21"})
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, created)
	s.Empty(errs)
}

func (s *RedisRepositoryTestSuite) TestCreateSessionInvalidDate() {
	err := s.repo.CreateSession(context.Background(), &CreateSessionInput{
		Session: &models.Session{ID: "session-1", Date: "21/10/2026"},
	})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestUpdateSessionStatus() {
	ctx := context.Background()
	s.Require().NoError(s.repo.CreateSession(ctx, &CreateSessionInput{
		Session: s.newSession("session-1", "2026-10-21"),
	}))

	later := s.testNow.Add(time.Hour)
	updated, err := s.repo.UpdateSessionStatus(ctx, &UpdateSessionStatusInput{
		SessionID: "session-1",
		Status:    models.SessionStatusPublished,
		UpdatedAt: later,
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusPublished, updated.Status)
	s.True(later.Equal(updated.UpdatedAt))

	stored, err := s.repo.GetSession(ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusPublished, stored.Status)

	// Closed never goes back to published or draft
	_, err = s.repo.UpdateSessionStatus(ctx, &UpdateSessionStatusInput{
		SessionID: "session-1",
		Status:    models.SessionStatusClosed,
		UpdatedAt: later,
	})
	s.Require().NoError(err)

	_, err = s.repo.UpdateSessionStatus(ctx, &UpdateSessionStatusInput{
		SessionID: "session-1",
		Status:    models.SessionStatusDraft,
		UpdatedAt: later,
	})
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.repo.UpdateSessionStatus(ctx, &UpdateSessionStatusInput{
		SessionID: "missing",
		Status:    models.SessionStatusClosed,
		UpdatedAt: later,
	})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestListSessions() {
	ctx := context.Background()
	for id, date := range map[string]string{
		"s3": "2026-11-04",
		"s1": "2026-10-21",
		"s2": "2026-10-28",
		"s0": "2026-10-14",
	} {
		s.Require().NoError(s.repo.CreateSession(ctx, &CreateSessionInput{
			Session: s.newSession(id, date),
		}))
	}

	out, err := s.repo.ListSessions(ctx, &ListSessionsInput{FromDate: "2026-10-19"})
	s.Require().NoError(err)
	s.Require().Len(out.Sessions, 3)
	s.Equal("s1", out.Sessions[0].ID)
	s.Equal("s2", out.Sessions[1].ID)
	s.Equal("s3", out.Sessions[2].ID)

	limited, err := s.repo.ListSessions(ctx, &ListSessionsInput{FromDate: "2026-10-19", Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(limited.Sessions, 1)
	s.Equal("s1", limited.Sessions[0].ID)

	all, err := s.repo.ListSessions(ctx, &ListSessionsInput{})
	s.Require().NoError(err)
	s.Len(all.Sessions, 4)
}
