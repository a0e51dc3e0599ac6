package session

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

type CreateSessionInput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type GetSessionByDateInput struct {
	Date string
}

type UpdateSessionStatusInput struct {
	SessionID string
	Status    models.SessionStatus
	UpdatedAt time.Time
}

type ListSessionsInput struct {
	// FromDate is inclusive (YYYY-MM-DD); empty lists from the beginning
	FromDate string

	// Limit caps the number of sessions returned; zero means no limit
	Limit int
}

type ListSessionsOutput struct {
	Sessions []*models.Session
}
