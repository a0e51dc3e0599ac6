package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/events"
	"github.com/KirkDiggler/pickup/internal/models"
	bookingRepo "github.com/KirkDiggler/pickup/internal/repositories/booking"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/links"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultCancelDeadline = 12 * time.Hour

	tracerName = "github.com/KirkDiggler/pickup/internal/services/booking"

	cancelPath   = "/links/cancel"
	calendarPath = "/links/calendar"
)

type service struct {
	cancelDeadline time.Duration
	baseURL        string

	bookingRepo bookingRepo.Repository
	sessions    sessions.Service
	directory   directory.Service
	links       links.Service
	messages    messaging.Service
	notifier    notify.Enqueuer
	events      events.Publisher

	clock         clock.Clock
	uuidGenerator uuid.UUID
	logger        *zap.Logger
	tracer        trace.Tracer

	locks *sessionLocks
}

// New creates a new booking service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.BookingRepo == nil {
		return nil, ErrNilBookingRepo
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

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	deadline := cfg.CancelDeadline
	if deadline <= 0 {
		deadline = defaultCancelDeadline
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &service{
		cancelDeadline: deadline,
		baseURL:        cfg.BaseURL,
		bookingRepo:    cfg.BookingRepo,
		sessions:       cfg.Sessions,
		directory:      cfg.Directory,
		links:          cfg.Links,
		messages:       cfg.Messages,
		notifier:       cfg.Notifier,
		events:         cfg.Events,
		clock:          cfg.Clock,
		uuidGenerator:  cfg.UUIDGenerator,
		logger:         logger,
		tracer:         tracer,
		locks:          newSessionLocks(),
	}, nil
}

// CreateBooking books a friend into a published session
func (s *service) CreateBooking(ctx context.Context, input *CreateBookingInput) (out *CreateBookingOutput, err error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	ctx, span := s.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.String("session.id", input.SessionID),
	))
	defer func() { endSpan(span, err) }()

	phone, err := s.directory.NormalizePhone(input.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsBookable() {
		return nil, ErrSessionNotPublished
	}

	resolved, err := s.directory.Resolve(ctx, &directory.ResolveInput{
		Phone: phone,
		Name:  input.FriendName,
	})
	if err != nil {
		if errors.Is(err, directory.ErrInvalidPhone) {
			return nil, ErrInvalidPhone
		}
		return nil, fmt.Errorf("failed to resolve friend: %w", err)
	}
	friend := resolved.Friend

	created, err := s.createLocked(ctx, session, friend)
	if err != nil {
		return nil, err
	}

	booking := created.Booking
	span.SetAttributes(
		attribute.String("booking.id", booking.ID),
		attribute.String("booking.status", string(booking.Status)),
		attribute.Bool("booking.already_booked", created.AlreadyExists),
	)

	if !created.AlreadyExists {
		s.logger.Info("booking created",
			zap.String("session_id", session.ID),
			zap.String("booking_id", booking.ID),
			zap.String("status", string(booking.Status)),
			zap.Int64("seq", booking.Seq),
		)
		s.notifyBooked(ctx, session, friend, booking, created.WaitlistPosition)
	}

	roster, err := s.buildRoster(ctx, session, false)
	if err != nil {
		return nil, err
	}

	return &CreateBookingOutput{
		Booking:          booking,
		Session:          session,
		Status:           booking.Status,
		AlreadyBooked:    created.AlreadyExists,
		WaitlistPosition: created.WaitlistPosition,
		Roster:           roster,
	}, nil
}

func (s *service) createLocked(ctx context.Context, session *models.Session, friend *models.Friend) (*bookingRepo.CreateBookingOutput, error) {
	unlock := s.locks.Lock(session.ID)
	defer unlock()

	created, err := s.bookingRepo.CreateBooking(ctx, &bookingRepo.CreateBookingInput{
		Booking: &models.Booking{
			ID:        s.uuidGenerator.NewUUID(),
			SessionID: session.ID,
			FriendID:  friend.ID,
			Phone:     friend.Phone,
			CreatedAt: s.clock.Now(),
		},
		Capacity: session.Capacity,
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrConflict) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return created, nil
}

// CancelBooking cancels a booking on behalf of a user or an admin
func (s *service) CancelBooking(ctx context.Context, input *CancelBookingInput) (out *CancelBookingOutput, err error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.Actor != models.ActorUser && input.Actor != models.ActorAdmin {
		return nil, ErrInvalidActor
	}

	ctx, span := s.tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(
		attribute.String("booking.id", input.BookingID),
		attribute.String("actor", string(input.Actor)),
	))
	defer func() { endSpan(span, err) }()

	existing, err := s.bookingRepo.GetBooking(ctx, &bookingRepo.GetBookingInput{BookingID: input.BookingID})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if existing.Status == models.BookingStatusCanceled {
		return nil, ErrAlreadyCanceled
	}

	session, err := s.getSession(ctx, existing.SessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	now := s.clock.Now()
	if input.Actor == models.ActorUser && !now.Before(session.StartsAt.Add(-s.cancelDeadline)) {
		return nil, ErrDeadlinePassed
	}

	canceled, err := s.cancelLocked(ctx, session.ID, &bookingRepo.CancelBookingInput{
		BookingID:  existing.ID,
		CanceledAt: now,
		CanceledBy: input.Actor,
		Reason:     input.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking canceled",
		zap.String("session_id", session.ID),
		zap.String("booking_id", canceled.Booking.ID),
		zap.String("previous_status", string(canceled.PreviousStatus)),
		zap.String("actor", string(input.Actor)),
	)

	s.notifyCanceled(ctx, session, canceled.Booking)

	if canceled.PreviousStatus == models.BookingStatusConfirmed {
		s.seatReleased(ctx, session, canceled)
	}

	return &CancelBookingOutput{
		Booking:        canceled.Booking,
		Session:        session,
		PreviousStatus: canceled.PreviousStatus,
	}, nil
}

func (s *service) cancelLocked(ctx context.Context, sessionID string, input *bookingRepo.CancelBookingInput) (*bookingRepo.CancelBookingOutput, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	canceled, err := s.bookingRepo.CancelBooking(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrAlreadyCanceled):
			return nil, ErrAlreadyCanceled
		case errors.Is(err, bookingRepo.ErrConflict):
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	return canceled, nil
}

// seatReleased hands promotion to the event queue, or runs it inline when
// there is no queue or publishing fails
func (s *service) seatReleased(ctx context.Context, session *models.Session, canceled *bookingRepo.CancelBookingOutput) {
	if s.events != nil {
		err := s.events.PublishBookingCanceled(ctx, &models.BookingCanceledEvent{
			ID:             s.uuidGenerator.NewUUID(),
			SessionID:      session.ID,
			BookingID:      canceled.Booking.ID,
			PreviousStatus: canceled.PreviousStatus,
			Actor:          canceled.Booking.CanceledBy,
			OccurredAt:     s.clock.Now(),
		})
		if err == nil {
			return
		}
		s.logger.Error("failed to publish cancellation, promoting inline",
			zap.String("session_id", session.ID),
			zap.String("booking_id", canceled.Booking.ID),
			zap.Error(err),
		)
	}

	if _, err := s.Promote(ctx, &PromoteInput{SessionID: session.ID}); err != nil {
		s.logger.Error("inline promotion failed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

// Promote confirms the lowest-Seq waitlisted booking if a seat is free
func (s *service) Promote(ctx context.Context, input *PromoteInput) (out *PromoteOutput, err error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	ctx, span := s.tracer.Start(ctx, "booking.Promote", trace.WithAttributes(
		attribute.String("session.id", input.SessionID),
	))
	defer func() { endSpan(span, err) }()

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	promoted, err := s.promoteLocked(ctx, session)
	if err != nil {
		return nil, err
	}

	if promoted == nil {
		return &PromoteOutput{}, nil
	}

	span.SetAttributes(attribute.String("booking.id", promoted.ID))
	s.logger.Info("booking promoted",
		zap.String("session_id", session.ID),
		zap.String("booking_id", promoted.ID),
		zap.Int64("seq", promoted.Seq),
	)

	s.notifyPromoted(ctx, session, promoted)

	return &PromoteOutput{Promoted: promoted}, nil
}

func (s *service) promoteLocked(ctx context.Context, session *models.Session) (*models.Booking, error) {
	unlock := s.locks.Lock(session.ID)
	defer unlock()

	out, err := s.bookingRepo.PromoteNext(ctx, &bookingRepo.PromoteNextInput{
		SessionID:  session.ID,
		Capacity:   session.Capacity,
		PromotedAt: s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrConflict) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("failed to promote: %w", err)
	}

	return out.Promoted, nil
}

// GetRoster returns the confirmed participants of a session in booking order
func (s *service) GetRoster(ctx context.Context, input *GetRosterInput) (*GetRosterOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	roster, err := s.buildRoster(ctx, session, input.Admin)
	if err != nil {
		return nil, err
	}

	return &GetRosterOutput{
		Session: session,
		Roster:  roster,
	}, nil
}

func (s *service) buildRoster(ctx context.Context, session *models.Session, admin bool) (*models.Roster, error) {
	listed, err := s.bookingRepo.ListSessionBookings(ctx, &bookingRepo.ListSessionBookingsInput{SessionID: session.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	stats, err := s.bookingRepo.GetSessionStats(ctx, &bookingRepo.GetSessionStatsInput{SessionID: session.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	roster := &models.Roster{
		SessionID: session.ID,
		Entries:   []models.RosterEntry{},
		Stats: models.RosterStats{
			Confirmed:  stats.Confirmed,
			Available:  max(session.Capacity-stats.Confirmed, 0),
			Waitlisted: stats.Waitlisted,
		},
	}

	for _, b := range listed.Bookings {
		switch b.Status {
		case models.BookingStatusConfirmed:
			roster.Entries = append(roster.Entries, models.RosterEntry{
				BookingID: b.ID,
				Name:      s.friendName(ctx, b.FriendID),
				Phone:     displayPhone(b.Phone, admin),
			})
		case models.BookingStatusWaitlisted:
			if !admin {
				continue
			}
			roster.Waitlist = append(roster.Waitlist, models.WaitlistEntry{
				BookingID: b.ID,
				Name:      s.friendName(ctx, b.FriendID),
				Phone:     b.Phone,
				Position:  len(roster.Waitlist) + 1,
			})
		}
	}

	return roster, nil
}

// BookWithLink redeems a signed booking link
func (s *service) BookWithLink(ctx context.Context, input *BookWithLinkInput) (*CreateBookingOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	claim, err := s.links.Verify(&links.VerifyInput{Token: input.Token})
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.CreateBooking(ctx, &CreateBookingInput{
		SessionID:  claim.SessionID,
		Phone:      claim.Phone,
		FriendName: input.Name,
	})
}

// CancelWithLink cancels the link holder's active booking
func (s *service) CancelWithLink(ctx context.Context, input *CancelWithLinkInput) (*CancelBookingOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	claim, err := s.links.Verify(&links.VerifyInput{Token: input.Token})
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.getSession(ctx, claim.SessionID)
	if err != nil {
		return nil, err
	}

	active, err := s.activeBooking(ctx, session, claim.Phone)
	if err != nil {
		return nil, err
	}

	return s.CancelBooking(ctx, &CancelBookingInput{
		BookingID: active.ID,
		Actor:     models.ActorUser,
	})
}

// AdminCancel cancels any booking without the user deadline
func (s *service) AdminCancel(ctx context.Context, input *AdminCancelInput) (*CancelBookingOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	return s.CancelBooking(ctx, &CancelBookingInput{
		BookingID: input.BookingID,
		Actor:     models.ActorAdmin,
		Reason:    input.Reason,
	})
}

// FindBooking returns the link holder's active booking with its session and friend
func (s *service) FindBooking(ctx context.Context, input *FindBookingInput) (*FindBookingOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	claim, err := s.links.Verify(&links.VerifyInput{Token: input.Token})
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.getSession(ctx, claim.SessionID)
	if err != nil {
		return nil, err
	}

	active, err := s.activeBooking(ctx, session, claim.Phone)
	if err != nil {
		return nil, err
	}

	friend, err := s.directory.GetFriend(ctx, &directory.GetFriendInput{FriendID: active.FriendID})
	if err != nil && !errors.Is(err, directory.ErrFriendNotFound) {
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	return &FindBookingOutput{
		Booking: active,
		Session: session,
		Friend:  friend,
	}, nil
}

// activeBooking finds the phone's live booking. When only canceled ones
// exist the caller already used their cancel link.
func (s *service) activeBooking(ctx context.Context, session *models.Session, rawPhone string) (*models.Booking, error) {
	phone, err := s.directory.NormalizePhone(rawPhone)
	if err != nil {
		return nil, ErrInvalidToken
	}

	active, err := s.bookingRepo.GetActiveBooking(ctx, &bookingRepo.GetActiveBookingInput{
		SessionID: session.ID,
		Phone:     phone,
	})
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, fmt.Errorf("failed to get active booking: %w", err)
	}

	listed, err := s.bookingRepo.ListSessionBookings(ctx, &bookingRepo.ListSessionBookingsInput{SessionID: session.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for _, b := range listed.Bookings {
		if b.Phone == phone && b.Status == models.BookingStatusCanceled {
			return nil, ErrAlreadyCanceled
		}
	}

	return nil, ErrBookingNotFound
}

func (s *service) getSession(ctx context.Context, dateOrID string) (*models.Session, error) {
	out, err := s.sessions.Get(ctx, &sessions.GetInput{DateOrID: dateOrID})
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return out.Session, nil
}

func (s *service) friendName(ctx context.Context, friendID string) string {
	friend, err := s.directory.GetFriend(ctx, &directory.GetFriendInput{FriendID: friendID})
	if err != nil {
		return ""
	}
	return friend.Name
}

func displayPhone(phone string, admin bool) string {
	if admin {
		return phone
	}
	return directory.MaskPhone(phone)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
