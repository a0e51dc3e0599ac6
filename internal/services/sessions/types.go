package sessions

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/models"
	sessionRepo "github.com/KirkDiggler/pickup/internal/repositories/session"
	"go.uber.org/zap"
)

const (
	// DateLayout is the canonical session date format
	DateLayout = "2006-01-02"

	// TimeLayout is the time-of-day format for session windows
	TimeLayout = "15:04"

	MinCapacity = 1
	MaxCapacity = 20
)

// Config holds configuration for the session registry
type Config struct {
	// TimeZone interprets dates and times of day; defaults to UTC
	TimeZone *time.Location

	// Repository dependencies
	SessionRepo sessionRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Logger        *zap.Logger
}

type CreateInput struct {
	// Date is YYYY-MM-DD
	Date string

	// StartTime and EndTime are HH:MM in the registry's time zone
	StartTime string
	EndTime   string

	Capacity int
	Location string

	// Status defaults to draft
	Status models.SessionStatus
}

type CreateOutput struct {
	Session *models.Session
}

type GetInput struct {
	// DateOrID is a YYYY-MM-DD date or a session ID
	DateOrID string
}

type GetOutput struct {
	Session *models.Session
}

type UpdateStatusInput struct {
	// DateOrID is a YYYY-MM-DD date or a session ID
	DateOrID string
	Status   models.SessionStatus
}

type UpdateStatusOutput struct {
	Session *models.Session
}

type ListUpcomingInput struct {
	// From defaults to today in the registry's time zone
	From string

	// Limit of zero means no limit
	Limit int
}

type ListUpcomingOutput struct {
	Sessions []*models.Session
}
