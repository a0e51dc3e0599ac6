package friend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	friendKeyPrefix      = "friend:"
	friendPhoneKeyPrefix = "friend_phone:"
	activeFriendsKey     = "friends_active"
)

var (
	// ErrFriendNotFound is returned when a friend is not found
	ErrFriendNotFound = errors.New("friend not found")

	// ErrPhoneTaken is returned when creating a friend whose phone is already indexed
	ErrPhoneTaken = errors.New("phone already belongs to a friend")
)

// Config holds configuration for the Redis friend repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed friend repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// CreateFriend writes the phone index and the friend in one transaction, so a
// reader that finds the phone always finds the friend. Two concurrent
// resolutions of the same phone end with one friend; the loser gets
// ErrPhoneTaken.
func (r *redisRepository) CreateFriend(ctx context.Context, input *CreateFriendInput) error {
	if input == nil || input.Friend == nil {
		return errors.New("input and friend cannot be nil")
	}

	friend := input.Friend
	if friend.ID == "" || friend.Phone == "" {
		return errors.New("friend ID and phone cannot be empty")
	}

	friendJSON, err := json.Marshal(friend)
	if err != nil {
		return fmt.Errorf("failed to marshal friend: %w", err)
	}

	phoneKey := fmt.Sprintf("%s%s", friendPhoneKeyPrefix, friend.Phone)
	txf := func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, phoneKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check phone: %w", err)
		}
		if taken > 0 {
			return ErrPhoneTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, phoneKey, friend.ID, 0)
			r.writeFriend(ctx, pipe, friend, friendJSON)
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, phoneKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPhoneTaken), errors.Is(err, redis.TxFailedErr):
		// a concurrent create wrote the phone between WATCH and EXEC
		return ErrPhoneTaken
	default:
		return fmt.Errorf("failed to save friend: %w", err)
	}
}

// SaveFriend overwrites an existing friend. The phone is immutable.
func (r *redisRepository) SaveFriend(ctx context.Context, input *SaveFriendInput) error {
	if input == nil || input.Friend == nil {
		return errors.New("input and friend cannot be nil")
	}

	friend := input.Friend
	if friend.ID == "" {
		return errors.New("friend ID cannot be empty")
	}

	existing, err := r.GetFriend(ctx, &GetFriendInput{FriendID: friend.ID})
	if err != nil {
		return err
	}
	if existing.Phone != friend.Phone {
		return errors.New("friend phone cannot change")
	}

	friendJSON, err := json.Marshal(friend)
	if err != nil {
		return fmt.Errorf("failed to marshal friend: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		r.writeFriend(ctx, pipe, friend, friendJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save friend: %w", err)
	}

	return nil
}

func (r *redisRepository) writeFriend(ctx context.Context, pipe redis.Pipeliner, friend *models.Friend, friendJSON []byte) {
	pipe.Set(ctx, fmt.Sprintf("%s%s", friendKeyPrefix, friend.ID), friendJSON, 0)
	if friend.Active {
		pipe.SAdd(ctx, activeFriendsKey, friend.ID)
	} else {
		pipe.SRem(ctx, activeFriendsKey, friend.ID)
	}
}

// GetFriend retrieves a friend by ID from Redis
func (r *redisRepository) GetFriend(ctx context.Context, input *GetFriendInput) (*models.Friend, error) {
	if input == nil || input.FriendID == "" {
		return nil, errors.New("input and friend ID cannot be empty")
	}

	friendKey := fmt.Sprintf("%s%s", friendKeyPrefix, input.FriendID)
	friendJSON, err := r.client.Get(ctx, friendKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	var friend models.Friend
	if err := json.Unmarshal([]byte(friendJSON), &friend); err != nil {
		return nil, fmt.Errorf("failed to unmarshal friend: %w", err)
	}

	return &friend, nil
}

// GetFriendByPhone retrieves a friend through the phone index
func (r *redisRepository) GetFriendByPhone(ctx context.Context, input *GetFriendByPhoneInput) (*models.Friend, error) {
	if input == nil || input.Phone == "" {
		return nil, errors.New("input and phone cannot be empty")
	}

	phoneKey := fmt.Sprintf("%s%s", friendPhoneKeyPrefix, input.Phone)
	friendID, err := r.client.Get(ctx, phoneKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to get friend ID for phone: %w", err)
	}

	return r.GetFriend(ctx, &GetFriendInput{
		FriendID: friendID,
	})
}

// ListActiveFriends lists every active friend ordered by name
func (r *redisRepository) ListActiveFriends(ctx context.Context) (*ListActiveFriendsOutput, error) {
	friendIDs, err := r.client.SMembers(ctx, activeFriendsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active friend IDs: %w", err)
	}

	if len(friendIDs) == 0 {
		return &ListActiveFriendsOutput{
			Friends: []*models.Friend{},
		}, nil
	}

	pipe := r.client.Pipeline()
	friendCommands := make(map[string]*redis.StringCmd)
	for _, friendID := range friendIDs {
		friendCommands[friendID] = pipe.Get(ctx, fmt.Sprintf("%s%s", friendKeyPrefix, friendID))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	friends := make([]*models.Friend, 0, len(friendIDs))
	for friendID, cmd := range friendCommands {
		friendJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get friend %s: %w", friendID, err)
		}

		var friend models.Friend
		if err := json.Unmarshal([]byte(friendJSON), &friend); err != nil {
			return nil, fmt.Errorf("failed to unmarshal friend %s: %w", friendID, err)
		}
		friends = append(friends, &friend)
	}

	sort.Slice(friends, func(i, j int) bool {
		if friends[i].Name == friends[j].Name {
			return friends[i].ID < friends[j].ID
		}
		return friends[i].Name < friends[j].Name
	})

	return &ListActiveFriendsOutput{
		Friends: friends,
	}, nil
}
