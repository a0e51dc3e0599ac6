package booking

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/links"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"go.uber.org/zap"
)

// bookingLinks are the self-service URLs embedded in booking messages.
// Both are empty once the session has ended.
type bookingLinks struct {
	cancel   string
	calendar string
}

func (s *service) linksFor(session *models.Session, phone string) bookingLinks {
	ttl := session.EndsAt.Sub(s.clock.Now())
	if ttl <= 0 || s.baseURL == "" {
		return bookingLinks{}
	}

	issued, err := s.links.Issue(&links.IssueInput{
		SessionID: session.ID,
		Phone:     phone,
		TTL:       ttl,
	})
	if err != nil {
		s.logger.Warn("failed to issue booking link",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return bookingLinks{}
	}

	return bookingLinks{
		cancel:   links.LinkURL(s.baseURL, cancelPath, issued.Token),
		calendar: links.LinkURL(s.baseURL, calendarPath, issued.Token),
	}
}

func (s *service) notifyBooked(ctx context.Context, session *models.Session, friend *models.Friend, booking *models.Booking, position int) {
	urls := s.linksFor(session, booking.Phone)

	if booking.Status == models.BookingStatusWaitlisted {
		msg, err := s.messages.GetWaitlistedMessage(ctx, &messaging.GetWaitlistedMessageInput{
			FriendName: friend.Name,
			Session:    session,
			Position:   position,
			CancelURL:  urls.cancel,
		})
		if err != nil {
			s.logMessageError(booking, err)
			return
		}
		s.enqueue(notify.PurposeWaitlisted, booking, msg.Message)
		return
	}

	msg, err := s.messages.GetBookingConfirmedMessage(ctx, &messaging.GetBookingConfirmedMessageInput{
		FriendName:  friend.Name,
		Session:     session,
		CancelURL:   urls.cancel,
		CalendarURL: urls.calendar,
	})
	if err != nil {
		s.logMessageError(booking, err)
		return
	}
	s.enqueue(notify.PurposeConfirmed, booking, msg.Message)
}

func (s *service) notifyPromoted(ctx context.Context, session *models.Session, booking *models.Booking) {
	urls := s.linksFor(session, booking.Phone)

	msg, err := s.messages.GetPromotedMessage(ctx, &messaging.GetPromotedMessageInput{
		FriendName:  s.friendName(ctx, booking.FriendID),
		Session:     session,
		CancelURL:   urls.cancel,
		CalendarURL: urls.calendar,
	})
	if err != nil {
		s.logMessageError(booking, err)
		return
	}
	s.enqueue(notify.PurposePromoted, booking, msg.Message)
}

func (s *service) notifyCanceled(ctx context.Context, session *models.Session, booking *models.Booking) {
	msg, err := s.messages.GetCanceledMessage(ctx, &messaging.GetCanceledMessageInput{
		FriendName: s.friendName(ctx, booking.FriendID),
		Session:    session,
		CanceledBy: booking.CanceledBy,
		Reason:     booking.CancelReason,
	})
	if err != nil {
		s.logMessageError(booking, err)
		return
	}
	s.enqueue(notify.PurposeCanceled, booking, msg.Message)
}

func (s *service) enqueue(purpose notify.Purpose, booking *models.Booking, body string) {
	s.notifier.Enqueue(&notify.Message{
		DedupeKey: notify.BookingKey(purpose, booking.ID),
		To:        booking.Phone,
		Body:      body,
	})
}

func (s *service) logMessageError(booking *models.Booking, err error) {
	s.logger.Error("failed to render booking message",
		zap.String("booking_id", booking.ID),
		zap.String("to", directory.MaskPhone(booking.Phone)),
		zap.Error(err),
	)
}
