package friend

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pickup/internal/repositories/friend Repository

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/models"
)

// Repository defines the interface for friend persistence
type Repository interface {
	// CreateFriend persists a new friend, failing with ErrPhoneTaken when the
	// phone already belongs to someone
	CreateFriend(ctx context.Context, input *CreateFriendInput) error

	// SaveFriend overwrites an existing friend
	SaveFriend(ctx context.Context, input *SaveFriendInput) error

	// GetFriend retrieves a friend by ID
	GetFriend(ctx context.Context, input *GetFriendInput) (*models.Friend, error)

	// GetFriendByPhone retrieves a friend by canonical phone
	GetFriendByPhone(ctx context.Context, input *GetFriendByPhoneInput) (*models.Friend, error)

	// ListActiveFriends lists every friend flagged active
	ListActiveFriends(ctx context.Context) (*ListActiveFriendsOutput, error)
}
