package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/pickup/internal/common/uuid/mocks"
	"github.com/KirkDiggler/pickup/internal/models"
	sessionRepo "github.com/KirkDiggler/pickup/internal/repositories/session"
	sessionMocks "github.com/KirkDiggler/pickup/internal/repositories/session/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SessionServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockSessionRepo *sessionMocks.MockRepository
	mockClock       *mocks.MockClock
	mockUUID        *uuidMocks.MockUUID
	service         Service
	ctx             context.Context
	tz              *time.Location

	// Test data
	testTime      time.Time
	testSessionID string
}

func (s *SessionServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSessionRepo = sessionMocks.NewMockRepository(s.mockCtrl)
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.ctx = context.Background()

	s.tz = time.FixedZone("EST", -5*60*60)
	s.testTime = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	s.testSessionID = "test-session-id"

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	svc, err := New(&Config{
		TimeZone:      s.tz,
		SessionRepo:   s.mockSessionRepo,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.service = svc
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (s *SessionServiceTestSuite) TestCreate() {
	s.mockUUID.EXPECT().NewUUID().Return(s.testSessionID)
	s.mockSessionRepo.EXPECT().
		CreateSession(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *sessionRepo.CreateSessionInput) error {
			s.Equal(s.testSessionID, input.Session.ID)
			s.Equal("2026-10-21", input.Session.Date)
			return nil
		})

	out, err := s.service.Create(s.ctx, &CreateInput{
		Date:      "2026-10-21",
		StartTime: "18:00",
		EndTime:   "20:00",
		Capacity:  10,
		Location:  " Riverside courts ",
	})
	s.Require().NoError(err)

	session := out.Session
	s.Equal(models.SessionStatusDraft, session.Status)
	s.Equal("Riverside courts", session.Location)
	s.True(time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC).Equal(session.StartsAt))
	s.True(time.Date(2026, 10, 22, 1, 0, 0, 0, time.UTC).Equal(session.EndsAt))
	s.Equal(s.testTime, session.CreatedAt)
}

func (s *SessionServiceTestSuite) TestCreateDuplicateDate() {
	s.mockUUID.EXPECT().NewUUID().Return(s.testSessionID)
	s.mockSessionRepo.EXPECT().
		CreateSession(s.ctx, gomock.Any()).
		Return(sessionRepo.ErrDuplicateDate)

	_, err := s.service.Create(s.ctx, &CreateInput{
		Date:      "2026-10-21",
		StartTime: "18:00",
		EndTime:   "20:00",
		Capacity:  10,
		Status:    models.SessionStatusPublished,
	})
	s.ErrorIs(err, ErrDuplicateSession)
}

func (s *SessionServiceTestSuite) TestCreateValidation() {
	tests := []struct {
		name  string
		input *CreateInput
		want  error
	}{
		{
			name:  "end before start",
			input: &CreateInput{Date: "2026-10-21", StartTime: "20:00", EndTime: "18:00", Capacity: 10},
			want:  ErrInvalidWindow,
		},
		{
			name:  "end equals start",
			input: &CreateInput{Date: "2026-10-21", StartTime: "18:00", EndTime: "18:00", Capacity: 10},
			want:  ErrInvalidWindow,
		},
		{
			name:  "zero capacity",
			input: &CreateInput{Date: "2026-10-21", StartTime: "18:00", EndTime: "20:00", Capacity: 0},
			want:  ErrInvalidCapacity,
		},
		{
			name:  "capacity above limit",
			input: &CreateInput{Date: "2026-10-21", StartTime: "18:00", EndTime: "20:00", Capacity: 21},
			want:  ErrInvalidCapacity,
		},
		{
			name:  "bad date",
			input: &CreateInput{Date: "10/21/2026", StartTime: "18:00", EndTime: "20:00", Capacity: 10},
			want:  ErrInvalidDate,
		},
		{
			name:  "bad time",
			input: &CreateInput{Date: "2026-10-21", StartTime: "6pm", EndTime: "20:00", Capacity: 10},
			want:  ErrInvalidDate,
		},
		{
			name:  "unknown status",
			input: &CreateInput{Date: "2026-10-21", StartTime: "18:00", EndTime: "20:00", Capacity: 10, Status: "open"},
			want:  ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Create(s.ctx, tt.input)
			s.ErrorIs(err, tt.want)
		})
	}
}

func (s *SessionServiceTestSuite) TestGetByDateOrID() {
	expected := &models.Session{ID: s.testSessionID, Date: "2026-10-21"}

	s.mockSessionRepo.EXPECT().
		GetSessionByDate(s.ctx, &sessionRepo.GetSessionByDateInput{Date: "2026-10-21"}).
		Return(expected, nil)
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: s.testSessionID}).
		Return(expected, nil)

	byDate, err := s.service.Get(s.ctx, &GetInput{DateOrID: "2026-10-21"})
	s.Require().NoError(err)
	s.Equal(expected, byDate.Session)

	byID, err := s.service.Get(s.ctx, &GetInput{DateOrID: s.testSessionID})
	s.Require().NoError(err)
	s.Equal(expected, byID.Session)
}

func (s *SessionServiceTestSuite) TestGetNotFound() {
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(nil, sessionRepo.ErrSessionNotFound)

	_, err := s.service.Get(s.ctx, &GetInput{DateOrID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)

	_, err = s.service.Get(s.ctx, &GetInput{DateOrID: "  "})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *SessionServiceTestSuite) TestUpdateStatus() {
	current := &models.Session{ID: s.testSessionID, Status: models.SessionStatusDraft}
	updated := &models.Session{ID: s.testSessionID, Status: models.SessionStatusPublished}

	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(current, nil)
	s.mockSessionRepo.EXPECT().
		UpdateSessionStatus(s.ctx, &sessionRepo.UpdateSessionStatusInput{
			SessionID: s.testSessionID,
			Status:    models.SessionStatusPublished,
			UpdatedAt: s.testTime,
		}).
		Return(updated, nil)

	out, err := s.service.UpdateStatus(s.ctx, &UpdateStatusInput{
		DateOrID: s.testSessionID,
		Status:   models.SessionStatusPublished,
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusPublished, out.Session.Status)
}

func (s *SessionServiceTestSuite) TestUpdateStatusRegress() {
	s.mockSessionRepo.EXPECT().
		GetSession(s.ctx, gomock.Any()).
		Return(&models.Session{ID: s.testSessionID, Status: models.SessionStatusClosed}, nil)
	s.mockSessionRepo.EXPECT().
		UpdateSessionStatus(s.ctx, gomock.Any()).
		Return(nil, sessionRepo.ErrInvalidTransition)

	_, err := s.service.UpdateStatus(s.ctx, &UpdateStatusInput{
		DateOrID: s.testSessionID,
		Status:   models.SessionStatusPublished,
	})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *SessionServiceTestSuite) TestListUpcomingDefaultsToToday() {
	// 15:00 UTC is 10:00 in the registry's zone, still the 19th
	s.mockSessionRepo.EXPECT().
		ListSessions(s.ctx, &sessionRepo.ListSessionsInput{FromDate: "2026-10-19", Limit: 2}).
		Return(&sessionRepo.ListSessionsOutput{Sessions: []*models.Session{{ID: "a"}}}, nil)

	out, err := s.service.ListUpcoming(s.ctx, &ListUpcomingInput{Limit: 2})
	s.Require().NoError(err)
	s.Len(out.Sessions, 1)

	_, err = s.service.ListUpcoming(s.ctx, &ListUpcomingInput{From: "tomorrow"})
	s.ErrorIs(err, ErrInvalidDate)
}

func (s *SessionServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Clock: s.mockClock, UUIDGenerator: s.mockUUID})
	s.ErrorIs(err, ErrNilSessionRepo)

	_, err = New(&Config{SessionRepo: s.mockSessionRepo, UUIDGenerator: s.mockUUID})
	s.ErrorIs(err, ErrNilClock)

	_, err = New(&Config{SessionRepo: s.mockSessionRepo, Clock: s.mockClock})
	s.ErrorIs(err, ErrNilUUIDGenerator)
}
