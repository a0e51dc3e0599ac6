package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/links"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"go.uber.org/zap"
)

const (
	defaultInterval = time.Hour

	bookPath = "/links/book"
)

type service struct {
	weekday        time.Weekday
	tz             *time.Location
	startTime      string
	endTime        string
	capacity       int
	location       string
	autoPublish    bool
	inviteOnCreate bool
	interval       time.Duration
	baseURL        string

	sessions  sessions.Service
	directory directory.Service
	links     links.Service
	messages  messaging.Service
	notifier  notify.Enqueuer
	clock     clock.Clock
	logger    *zap.Logger
}

// New creates a new scheduler
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Sessions == nil {
		return nil, ErrNilSessions
	}

	if cfg.Directory == nil {
		return nil, ErrNilDirectory
	}

	if cfg.Links == nil {
		return nil, ErrNilLinks
	}

	if cfg.Messages == nil {
		return nil, ErrNilMessages
	}

	if cfg.Notifier == nil {
		return nil, ErrNilNotifier
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.StartTime == "" || cfg.EndTime == "" {
		return nil, ErrInvalidWindow
	}

	tz := cfg.TimeZone
	if tz == nil {
		tz = time.UTC
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		weekday:        cfg.Weekday,
		tz:             tz,
		startTime:      cfg.StartTime,
		endTime:        cfg.EndTime,
		capacity:       cfg.Capacity,
		location:       cfg.Location,
		autoPublish:    cfg.AutoPublish,
		inviteOnCreate: cfg.InviteOnCreate,
		interval:       interval,
		baseURL:        cfg.BaseURL,
		sessions:       cfg.Sessions,
		directory:      cfg.Directory,
		links:          cfg.Links,
		messages:       cfg.Messages,
		notifier:       cfg.Notifier,
		clock:          cfg.Clock,
		logger:         logger,
	}, nil
}

// nextDate returns the next configured weekday whose start time has not
// passed yet, in the scheduler's zone
func (s *service) nextDate(now time.Time) (string, error) {
	local := now.In(s.tz)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.tz)

	days := (int(s.weekday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		start, err := time.Parse(sessions.TimeLayout, s.startTime)
		if err != nil {
			return "", fmt.Errorf("invalid start time %q: %w", s.startTime, err)
		}
		startsAt := today.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
		if !local.Before(startsAt) {
			days = 7
		}
	}

	return today.AddDate(0, 0, days).Format(sessions.DateLayout), nil
}

// EnsureNextSession creates the next session unless it already exists
func (s *service) EnsureNextSession(ctx context.Context) (*EnsureNextSessionOutput, error) {
	date, err := s.nextDate(s.clock.Now())
	if err != nil {
		return nil, err
	}

	status := models.SessionStatusDraft
	if s.autoPublish {
		status = models.SessionStatusPublished
	}

	created, err := s.sessions.Create(ctx, &sessions.CreateInput{
		Date:      date,
		StartTime: s.startTime,
		EndTime:   s.endTime,
		Capacity:  s.capacity,
		Location:  s.location,
		Status:    status,
	})
	if err != nil {
		if !errors.Is(err, sessions.ErrDuplicateSession) {
			return nil, fmt.Errorf("failed to create session for %s: %w", date, err)
		}

		existing, err := s.sessions.Get(ctx, &sessions.GetInput{DateOrID: date})
		if err != nil {
			return nil, fmt.Errorf("failed to get session for %s: %w", date, err)
		}
		return &EnsureNextSessionOutput{Session: existing.Session}, nil
	}

	out := &EnsureNextSessionOutput{
		Session: created.Session,
		Created: true,
	}

	if s.inviteOnCreate && created.Session.IsBookable() {
		invited, err := s.InviteActive(ctx, &InviteActiveInput{SessionID: created.Session.ID})
		if err != nil {
			return nil, err
		}
		out.Invited = invited.Invited
	}

	return out, nil
}

// InviteActive sends a booking link to every active friend
func (s *service) InviteActive(ctx context.Context, input *InviteActiveInput) (*InviteActiveOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	got, err := s.sessions.Get(ctx, &sessions.GetInput{DateOrID: input.SessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session := got.Session

	if !session.IsBookable() {
		return nil, ErrNotPublished
	}

	ttl := session.EndsAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return &InviteActiveOutput{}, nil
	}

	friends, err := s.directory.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	invited := 0
	for _, friend := range friends {
		issued, err := s.links.Issue(&links.IssueInput{
			SessionID: session.ID,
			Phone:     friend.Phone,
			TTL:       ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to issue link for %s: %w", friend.ID, err)
		}

		msg, err := s.messages.GetInviteMessage(ctx, &messaging.GetInviteMessageInput{
			FriendName: friend.Name,
			Session:    session,
			BookURL:    links.LinkURL(s.baseURL, bookPath, issued.Token),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render invite: %w", err)
		}

		s.notifier.Enqueue(&notify.Message{
			DedupeKey: notify.InviteKey(session.ID, friend.ID),
			To:        friend.Phone,
			Body:      msg.Message,
		})
		invited++
	}

	s.logger.Info("invites queued",
		zap.String("session_id", session.ID),
		zap.Int("count", invited),
	)

	return &InviteActiveOutput{Invited: invited}, nil
}

// Run ensures the next session exists now and on every tick
func (s *service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		out, err := s.EnsureNextSession(ctx)
		if err != nil {
			s.logger.Error("failed to ensure next session", zap.Error(err))
		} else if out.Created {
			s.logger.Info("scheduled next session",
				zap.String("session_id", out.Session.ID),
				zap.String("date", out.Session.Date),
				zap.Int("invited", out.Invited),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
