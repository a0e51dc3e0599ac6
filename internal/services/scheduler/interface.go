package scheduler

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/scheduler Service

import "context"

// Service creates upcoming sessions and invites friends to them
type Service interface {
	// EnsureNextSession creates the next session on the configured weekday
	// unless one already exists for that date
	EnsureNextSession(ctx context.Context) (*EnsureNextSessionOutput, error)

	// InviteActive sends a booking link to every active friend. Each friend
	// is invited at most once per session.
	InviteActive(ctx context.Context, input *InviteActiveInput) (*InviteActiveOutput, error)

	// Run calls EnsureNextSession on every tick until ctx is done
	Run(ctx context.Context) error
}
