package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/models"
	sessionRepo "github.com/KirkDiggler/pickup/internal/repositories/session"
	"go.uber.org/zap"
)

// service implements the Service interface
type service struct {
	tz            *time.Location
	sessionRepo   sessionRepo.Repository
	clock         clock.Clock
	uuidGenerator uuid.UUID
	logger        *zap.Logger
}

// New creates a new session registry
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	tz := cfg.TimeZone
	if tz == nil {
		tz = time.UTC
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		tz:            tz,
		sessionRepo:   cfg.SessionRepo,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        logger,
	}, nil
}

// Create schedules a session for a date
func (s *service) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, ErrInvalidDate
	}

	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(input.Date), s.tz)
	if err != nil {
		return nil, ErrInvalidDate
	}

	startsAt, err := s.atTime(day, input.StartTime)
	if err != nil {
		return nil, err
	}

	endsAt, err := s.atTime(day, input.EndTime)
	if err != nil {
		return nil, err
	}

	if !endsAt.After(startsAt) {
		return nil, ErrInvalidWindow
	}

	if input.Capacity < MinCapacity || input.Capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}

	status := input.Status
	if status == "" {
		status = models.SessionStatusDraft
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	now := s.clock.Now()
	session := &models.Session{
		ID:        s.uuidGenerator.NewUUID(),
		Date:      day.Format(DateLayout),
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Capacity:  input.Capacity,
		Status:    status,
		Location:  strings.TrimSpace(input.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.sessionRepo.CreateSession(ctx, &sessionRepo.CreateSessionInput{
		Session: session,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrDuplicateDate) {
			return nil, ErrDuplicateSession
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("date", session.Date),
		zap.Int("capacity", session.Capacity),
		zap.String("status", string(session.Status)),
	)

	return &CreateOutput{
		Session: session,
	}, nil
}

// atTime places an HH:MM time of day on a date in the registry's zone
func (s *service) atTime(day time.Time, clockTime string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(clockTime))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, s.tz), nil
}

// Get looks a session up by date or ID
func (s *service) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || strings.TrimSpace(input.DateOrID) == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.lookup(ctx, strings.TrimSpace(input.DateOrID))
	if err != nil {
		return nil, err
	}

	return &GetOutput{
		Session: session,
	}, nil
}

func (s *service) lookup(ctx context.Context, dateOrID string) (*models.Session, error) {
	var (
		session *models.Session
		err     error
	)

	if _, parseErr := time.Parse(DateLayout, dateOrID); parseErr == nil {
		session, err = s.sessionRepo.GetSessionByDate(ctx, &sessionRepo.GetSessionByDateInput{
			Date: dateOrID,
		})
	} else {
		session, err = s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
			SessionID: dateOrID,
		})
	}

	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateStatus moves a session forward
func (s *service) UpdateStatus(ctx context.Context, input *UpdateStatusInput) (*UpdateStatusOutput, error) {
	if input == nil {
		return nil, ErrSessionNotFound
	}

	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	session, err := s.lookup(ctx, strings.TrimSpace(input.DateOrID))
	if err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateSessionStatus(ctx, &sessionRepo.UpdateSessionStatusInput{
		SessionID: session.ID,
		Status:    input.Status,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, sessionRepo.ErrInvalidTransition):
			return nil, ErrInvalidTransition
		case errors.Is(err, sessionRepo.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	if session.Status != updated.Status {
		s.logger.Info("session status changed",
			zap.String("session_id", updated.ID),
			zap.String("from", string(session.Status)),
			zap.String("to", string(updated.Status)),
		)
	}

	return &UpdateStatusOutput{
		Session: updated,
	}, nil
}

// ListUpcoming lists sessions on or after a date
func (s *service) ListUpcoming(ctx context.Context, input *ListUpcomingInput) (*ListUpcomingOutput, error) {
	from := ""
	limit := 0
	if input != nil {
		from = strings.TrimSpace(input.From)
		limit = input.Limit
	}

	if from == "" {
		from = s.clock.Now().In(s.tz).Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, from); err != nil {
		return nil, ErrInvalidDate
	}

	out, err := s.sessionRepo.ListSessions(ctx, &sessionRepo.ListSessionsInput{
		FromDate: from,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return &ListUpcomingOutput{
		Sessions: out.Sessions,
	}, nil
}
