package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix     = "session:"
	sessionDateKeyPrefix = "session_date:"
	sessionsByDateKey    = "sessions_by_date"

	dateLayout = "2006-01-02"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateDate is returned when a session already exists for a date
	ErrDuplicateDate = errors.New("session already exists for date")

	// ErrInvalidTransition is returned when a status change would regress
	ErrInvalidTransition = errors.New("invalid session status transition")
)

// Config holds configuration for the Redis session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed session repository
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

// dateScore turns YYYY-MM-DD into a sortable integer (20261019)
func dateScore(date string) (float64, error) {
	if _, err := parseDate(date); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.ReplaceAll(date, "-", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return float64(n), nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// CreateSession persists a new session and its date index in one transaction.
// Two creators racing for the same date cannot both succeed, and a reader that
// finds the date always finds the session.
func (r *redisRepository) CreateSession(ctx context.Context, input *CreateSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	sess := input.Session
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	score, err := dateScore(sess.Date)
	if err != nil {
		return err
	}

	sessionJSON, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dateKey := sessionDateKeyPrefix + sess.Date
	txf := func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, dateKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check session date: %w", err)
		}
		if taken > 0 {
			return ErrDuplicateDate
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dateKey, sess.ID, 0)
			pipe.Set(ctx, sessionKeyPrefix+sess.ID, sessionJSON, 0)
			pipe.ZAdd(ctx, sessionsByDateKey, redis.Z{
				Score:  score,
				Member: sess.ID,
			})
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, dateKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicateDate), errors.Is(err, redis.TxFailedErr):
		return ErrDuplicateDate
	default:
		return fmt.Errorf("failed to save session: %w", err)
	}
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	return r.getSession(ctx, r.client, input.SessionID)
}

func (r *redisRepository) getSession(ctx context.Context, c getter, sessionID string) (*models.Session, error) {
	sessionJSON, err := c.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// GetSessionByDate retrieves the session scheduled on a date
func (r *redisRepository) GetSessionByDate(ctx context.Context, input *GetSessionByDateInput) (*models.Session, error) {
	if input == nil || input.Date == "" {
		return nil, errors.New("input and date cannot be empty")
	}

	sessionID, err := r.client.Get(ctx, sessionDateKeyPrefix+input.Date).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session ID for date: %w", err)
	}

	return r.GetSession(ctx, &GetSessionInput{
		SessionID: sessionID,
	})
}

// UpdateSessionStatus advances a session's status inside a WATCH transaction
// so a concurrent change cannot be overwritten with a regressed status
func (r *redisRepository) UpdateSessionStatus(ctx context.Context, input *UpdateSessionStatusInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	key := sessionKeyPrefix + input.SessionID
	var updated *models.Session

	txf := func(tx *redis.Tx) error {
		sess, err := r.getSession(ctx, tx, input.SessionID)
		if err != nil {
			return err
		}

		if !sess.Status.CanTransitionTo(input.Status) {
			return ErrInvalidTransition
		}

		sess.Status = input.Status
		sess.UpdatedAt = input.UpdatedAt

		sessionJSON, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = sess
		return nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	return nil, fmt.Errorf("failed to update session status: %w", redis.TxFailedErr)
}

// ListSessions lists sessions on or after a date, ordered by date
func (r *redisRepository) ListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	min := "-inf"
	if input.FromDate != "" {
		score, err := dateScore(input.FromDate)
		if err != nil {
			return nil, err
		}
		min = strconv.FormatFloat(score, 'f', 0, 64)
	}

	rangeBy := &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}
	if input.Limit > 0 {
		rangeBy.Count = int64(input.Limit)
	}

	sessionIDs, err := r.client.ZRangeByScore(ctx, sessionsByDateKey, rangeBy).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list session IDs: %w", err)
	}

	if len(sessionIDs) == 0 {
		return &ListSessionsOutput{
			Sessions: []*models.Session{},
		}, nil
	}

	// Fetch all sessions in one round trip
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(sessionIDs))
	for i, sessionID := range sessionIDs {
		cmds[i] = pipe.Get(ctx, sessionKeyPrefix+sessionID)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	sessions := make([]*models.Session, 0, len(sessionIDs))
	for i, cmd := range cmds {
		sessionJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get session %s: %w", sessionIDs[i], err)
		}

		var sess models.Session
		if err := json.Unmarshal([]byte(sessionJSON), &sess); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionIDs[i], err)
		}
		sessions = append(sessions, &sess)
	}

	return &ListSessionsOutput{
		Sessions: sessions,
	}, nil
}
