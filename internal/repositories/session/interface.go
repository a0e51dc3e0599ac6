package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pickup/internal/repositories/session Repository

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
)

// Repository defines the interface for session persistence
type Repository interface {
	// CreateSession persists a new session, failing with ErrDuplicateDate when
	// the date is already taken
	CreateSession(ctx context.Context, input *CreateSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// GetSessionByDate retrieves the session scheduled on a date
	GetSessionByDate(ctx context.Context, input *GetSessionByDateInput) (*models.Session, error)

	// UpdateSessionStatus advances a session's status, never regressing it
	UpdateSessionStatus(ctx context.Context, input *UpdateSessionStatusInput) (*models.Session, error)

	// ListSessions lists sessions on or after a date, ordered by date
	ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error)
}
