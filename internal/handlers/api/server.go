// Package api serves the booking links and the operator API over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/logging"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/calendar"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerError is a custom error type for HTTP handler errors
type HandlerError string

// Error implements the error interface
func (e HandlerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig    HandlerError = "config cannot be nil"
	ErrNilBookings  HandlerError = "booking service cannot be nil"
	ErrNilSessions  HandlerError = "session service cannot be nil"
	ErrNilDirectory HandlerError = "directory service cannot be nil"
	ErrNilScheduler HandlerError = "scheduler cannot be nil"
	ErrNilCalendar  HandlerError = "calendar generator cannot be nil"
	ErrNilClock     HandlerError = "clock cannot be nil"
	ErrNoAdminToken HandlerError = "admin token cannot be empty"
	errNotConfirmed HandlerError = "calendar is only available for confirmed bookings"
)

// CalendarGenerator renders .ics files
type CalendarGenerator interface {
	Generate(input *calendar.GenerateInput) (*calendar.GenerateOutput, error)
}

// Config holds the dependencies of the HTTP server
type Config struct {
	Bookings  booking.Service
	Sessions  sessions.Service
	Directory directory.Service
	Scheduler scheduler.Service
	Calendar  CalendarGenerator
	Clock     clock.Clock

	// AdminToken is the bearer token for /admin routes
	AdminToken string

	Logger *zap.Logger
}

// Server is the HTTP surface
type Server struct {
	bookings   booking.Service
	sessions   sessions.Service
	directory  directory.Service
	scheduler  scheduler.Service
	calendar   CalendarGenerator
	clock      clock.Clock
	adminToken string
	logger     *zap.Logger
}

// New creates the HTTP server
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Bookings == nil {
		return nil, ErrNilBookings
	}

	if cfg.Sessions == nil {
		return nil, ErrNilSessions
	}

	if cfg.Directory == nil {
		return nil, ErrNilDirectory
	}

	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}

	if cfg.Calendar == nil {
		return nil, ErrNilCalendar
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.AdminToken == "" {
		return nil, ErrNoAdminToken
	}

	return &Server{
		bookings:   cfg.Bookings,
		sessions:   cfg.Sessions,
		directory:  cfg.Directory,
		scheduler:  cfg.Scheduler,
		calendar:   cfg.Calendar,
		clock:      cfg.Clock,
		adminToken: cfg.AdminToken,
		logger:     logging.OrNop(cfg.Logger),
	}, nil
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(confirmTemplate)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	links := r.Group("/links")
	{
		links.GET("/book", s.confirmPage("Book a spot"))
		links.POST("/book", s.BookWithLink)
		links.GET("/cancel", s.confirmPage("Cancel your spot"))
		links.POST("/cancel", s.CancelWithLink)
		links.GET("/calendar", s.Calendar)
	}

	r.GET("/sessions/:id/roster", s.PublicRoster)

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())
	{
		admin.GET("/sessions", s.ListSessions)
		admin.POST("/sessions", s.CreateSession)
		admin.POST("/sessions/:id/status", s.UpdateSessionStatus)
		admin.GET("/sessions/:id/roster", s.AdminRoster)
		admin.POST("/sessions/:id/invite", s.InviteActive)
		admin.POST("/sessions/:id/promote", s.Promote)
		admin.POST("/bookings/:id/cancel", s.AdminCancel)
		admin.POST("/friends/import", s.ImportFriends)
		admin.PATCH("/friends/:phone", s.UpdateFriend)
	}

	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
