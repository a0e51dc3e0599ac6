package scheduler

import (
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

// Config holds the operator defaults for recurring sessions
type Config struct {
	// Weekday the session recurs on
	Weekday time.Weekday

	// TimeZone decides what "today" is; defaults to UTC
	TimeZone *time.Location

	// StartTime and EndTime are HH:MM
	StartTime string
	EndTime   string
	Capacity  int
	Location  string

	// AutoPublish creates sessions already open for booking
	AutoPublish bool

	// InviteOnCreate fans invites out when an auto-published session is created
	InviteOnCreate bool

	// Interval between Run ticks; defaults to 1h
	Interval time.Duration

	// BaseURL is the public root used for booking links
	BaseURL string

	// Service dependencies
	Sessions  sessions.Service
	Directory directory.Service
	Links     links.Service
	Messages  messaging.Service
	Notifier  notify.Enqueuer
	Clock     clock.Clock
	Logger    *zap.Logger
}

type EnsureNextSessionOutput struct {
	Session *models.Session

	// Created is false when the session already existed
	Created bool

	// Invited counts invites handed to the notifier
	Invited int
}

type InviteActiveInput struct {
	// SessionID is a session ID or a YYYY-MM-DD date
	SessionID string
}

type InviteActiveOutput struct {
	Invited int
}
