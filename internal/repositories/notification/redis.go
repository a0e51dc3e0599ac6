package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	notificationKeyPrefix = "notification:"

	// claimMarker is stored while a send is in flight
	claimMarker = "pending"

	defaultLease = 5 * time.Minute
)

var (
	// ErrRecordNotFound is returned when a key has no final record
	ErrRecordNotFound = errors.New("notification record not found")
)

// Config holds configuration for the Redis notification repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed notification repository
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

func notificationKey(dedupeKey string) string {
	return fmt.Sprintf("%s%s", notificationKeyPrefix, dedupeKey)
}

// Claim reserves the key with SET NX and a lease
func (r *redisRepository) Claim(ctx context.Context, input *ClaimInput) (bool, error) {
	if input == nil || input.DedupeKey == "" {
		return false, errors.New("input and dedupe key cannot be empty")
	}

	lease := input.Lease
	if lease <= 0 {
		lease = defaultLease
	}

	claimed, err := r.client.SetNX(ctx, notificationKey(input.DedupeKey), claimMarker, lease).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim notification key: %w", err)
	}

	return claimed, nil
}

// PutRecord stores the final record with no expiry
func (r *redisRepository) PutRecord(ctx context.Context, input *PutRecordInput) error {
	if input == nil || input.Record == nil || input.Record.DedupeKey == "" {
		return errors.New("input, record and dedupe key cannot be empty")
	}

	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return fmt.Errorf("failed to marshal notification record: %w", err)
	}

	if err := r.client.Set(ctx, notificationKey(input.Record.DedupeKey), recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save notification record: %w", err)
	}

	return nil
}

// Exists reports whether a key has a record or a claim
func (r *redisRepository) Exists(ctx context.Context, input *ExistsInput) (bool, error) {
	if input == nil || input.DedupeKey == "" {
		return false, errors.New("input and dedupe key cannot be empty")
	}

	n, err := r.client.Exists(ctx, notificationKey(input.DedupeKey)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check notification key: %w", err)
	}

	return n > 0, nil
}

// GetRecord retrieves the final record for a key
func (r *redisRepository) GetRecord(ctx context.Context, input *GetRecordInput) (*models.NotificationRecord, error) {
	if input == nil || input.DedupeKey == "" {
		return nil, errors.New("input and dedupe key cannot be empty")
	}

	value, err := r.client.Get(ctx, notificationKey(input.DedupeKey)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get notification record: %w", err)
	}

	if value == claimMarker {
		return nil, ErrRecordNotFound
	}

	var record models.NotificationRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification record: %w", err)
	}

	return &record, nil
}
