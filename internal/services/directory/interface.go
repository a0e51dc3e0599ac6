package directory

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pickup/internal/services/directory Service

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
)

// Service manages friends keyed by canonical phone number
type Service interface {
	// NormalizePhone converts raw input to E.164
	NormalizePhone(raw string) (string, error)

	// Resolve finds or creates the friend for a phone. An existing name is
	// never overwritten here.
	Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error)

	// Update changes a friend's name or active flag
	Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error)

	// Import upserts a batch of friends, overwriting names
	Import(ctx context.Context, input *ImportInput) (*ImportOutput, error)

	// GetFriend retrieves a friend by ID
	GetFriend(ctx context.Context, input *GetFriendInput) (*models.Friend, error)

	// GetFriendByPhone retrieves a friend by raw or canonical phone
	GetFriendByPhone(ctx context.Context, input *GetFriendByPhoneInput) (*models.Friend, error)

	// ListActive lists friends who receive scheduled invites
	ListActive(ctx context.Context) ([]*models.Friend, error)
}
