package api

import (
	"errors"
	"net/http"

	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidLink = "link invalid or expired"
	msgTryAgain    = "try again"
	msgInternal    = "internal error"
)

// statusFor maps a service error to an HTTP status and a public message.
// Unknown errors never leak their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidLink
	case errors.Is(err, booking.ErrBusy):
		return http.StatusServiceUnavailable, msgTryAgain

	case errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, sessions.ErrSessionNotFound),
		errors.Is(err, directory.ErrFriendNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, booking.ErrSessionNotPublished),
		errors.Is(err, booking.ErrDeadlinePassed),
		errors.Is(err, booking.ErrAlreadyCanceled),
		errors.Is(err, sessions.ErrDuplicateSession),
		errors.Is(err, sessions.ErrInvalidTransition),
		errors.Is(err, scheduler.ErrNotPublished),
		errors.Is(err, errNotConfirmed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, booking.ErrInvalidPhone),
		errors.Is(err, directory.ErrInvalidPhone),
		errors.Is(err, sessions.ErrInvalidWindow),
		errors.Is(err, sessions.ErrInvalidCapacity),
		errors.Is(err, sessions.ErrInvalidDate),
		errors.Is(err, sessions.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, err.Error()
	}

	return http.StatusInternalServerError, msgInternal
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
