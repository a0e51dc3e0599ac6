package sessions

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/sessions Service

import (
	"context"
)

// Service is the session registry
type Service interface {
	// Create schedules a session; at most one exists per date
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Get looks a session up by date (YYYY-MM-DD) or by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// UpdateStatus moves a session forward through draft, published, closed
	UpdateStatus(ctx context.Context, input *UpdateStatusInput) (*UpdateStatusOutput, error)

	// ListUpcoming lists sessions on or after a date
	ListUpcoming(ctx context.Context, input *ListUpcomingInput) (*ListUpcomingOutput, error)
}
