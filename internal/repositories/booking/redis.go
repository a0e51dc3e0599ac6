package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	bookingKeyPrefix          = "booking:"
	sessionBookingsKeyPrefix  = "session_bookings:"
	sessionConfirmedKeyPrefix = "session_confirmed:"
	sessionWaitlistKeyPrefix  = "session_waitlist:"
	sessionActiveKeyPrefix    = "session_active:"
	sessionStatsKeyPrefix     = "session_stats:"

	// Fields of the session stats hash
	statsFieldConfirmed  = "confirmed"
	statsFieldWaitlisted = "waitlisted"
	statsFieldSeq        = "seq"

	defaultMaxRetries = 5
)

var (
	// ErrBookingNotFound is returned when a booking is not found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAlreadyCanceled is returned when canceling a canceled booking
	ErrAlreadyCanceled = errors.New("booking already canceled")

	// ErrConflict is returned when optimistic transactions kept colliding
	ErrConflict = errors.New("booking write conflicted, try again")
)

// Config holds configuration for the Redis booking repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxRetries bounds optimistic transaction retries; defaults to 5
	MaxRetries int
}

// redisRepository implements the Repository interface using Redis.
//
// Per session it keeps:
//   - session_bookings:{sid}  ZSET of every booking ID scored by Seq
//   - session_confirmed:{sid} ZSET of confirmed booking IDs scored by Seq
//   - session_waitlist:{sid}  ZSET of waitlisted booking IDs scored by Seq
//   - session_active:{sid}    HASH phone -> active booking ID
//   - session_stats:{sid}     HASH confirmed, waitlisted, seq
type redisRepository struct {
	client     *redis.Client
	maxRetries int
}

// NewRedis creates a new Redis-backed booking repository
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

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &redisRepository{
		client:     cfg.RedisClient,
		maxRetries: maxRetries,
	}, nil
}

func bookingKey(bookingID string) string {
	return fmt.Sprintf("%s%s", bookingKeyPrefix, bookingID)
}

func sessionKey(prefix, sessionID string) string {
	return fmt.Sprintf("%s%s", prefix, sessionID)
}

// reader covers the commands used on both *redis.Client and *redis.Tx
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// watch runs fn inside WATCH/MULTI, retrying when another writer touched a
// watched key first
func (r *redisRepository) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, fn, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (r *redisRepository) getBooking(ctx context.Context, c reader, bookingID string) (*models.Booking, error) {
	bookingJSON, err := c.Get(ctx, bookingKey(bookingID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	var booking models.Booking
	if err := json.Unmarshal([]byte(bookingJSON), &booking); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking: %w", err)
	}

	return &booking, nil
}

func (r *redisRepository) getStats(ctx context.Context, c reader, sessionID string) (*SessionStats, error) {
	fields, err := c.HGetAll(ctx, sessionKey(sessionStatsKeyPrefix, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	stats := &SessionStats{}
	if v, ok := fields[statsFieldConfirmed]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmed count %q: %w", v, err)
		}
		stats.Confirmed = n
	}
	if v, ok := fields[statsFieldWaitlisted]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid waitlisted count %q: %w", v, err)
		}
		stats.Waitlisted = n
	}
	if v, ok := fields[statsFieldSeq]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seq %q: %w", v, err)
		}
		stats.Seq = n
	}

	return stats, nil
}

// CreateBooking decides confirmed or waitlisted from the stats hash and writes
// the booking in the same transaction. The active index and the stats hash are
// watched, so a concurrent create, cancel or promotion forces a retry against
// fresh counts.
func (r *redisRepository) CreateBooking(ctx context.Context, input *CreateBookingInput) (*CreateBookingOutput, error) {
	if input == nil || input.Booking == nil {
		return nil, errors.New("input and booking cannot be nil")
	}

	if input.Booking.ID == "" || input.Booking.SessionID == "" || input.Booking.Phone == "" {
		return nil, errors.New("booking ID, session ID and phone are required")
	}

	if input.Capacity <= 0 {
		return nil, errors.New("capacity must be positive")
	}

	sessionID := input.Booking.SessionID
	activeKey := sessionKey(sessionActiveKeyPrefix, sessionID)
	statsKey := sessionKey(sessionStatsKeyPrefix, sessionID)

	var output *CreateBookingOutput

	txf := func(tx *redis.Tx) error {
		existingID, err := tx.HGet(ctx, activeKey, input.Booking.Phone).Result()
		if err == nil {
			existing, err := r.getBooking(ctx, tx, existingID)
			if err != nil {
				return err
			}

			position := 0
			if existing.Status == models.BookingStatusWaitlisted {
				position, err = r.waitlistPosition(ctx, tx, existing)
				if err != nil {
					return err
				}
			}

			output = &CreateBookingOutput{
				Booking:          existing,
				AlreadyExists:    true,
				WaitlistPosition: position,
			}
			return nil
		}
		if err != redis.Nil {
			return fmt.Errorf("failed to check active booking: %w", err)
		}

		stats, err := r.getStats(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		booking := *input.Booking
		booking.Seq = stats.Seq + 1
		booking.PromotedAt = nil
		booking.CanceledAt = nil
		booking.CanceledBy = ""
		booking.CancelReason = ""

		// A free seat goes to the head of the waitlist through PromoteNext, so
		// a newcomer only confirms when nobody is waiting
		position := 0
		if stats.Confirmed < input.Capacity && stats.Waitlisted == 0 {
			booking.Status = models.BookingStatusConfirmed
		} else {
			booking.Status = models.BookingStatusWaitlisted
			position = stats.Waitlisted + 1
		}

		bookingJSON, err := json.Marshal(&booking)
		if err != nil {
			return fmt.Errorf("failed to marshal booking: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			member := redis.Z{Score: float64(booking.Seq), Member: booking.ID}

			pipe.Set(ctx, bookingKey(booking.ID), bookingJSON, 0)
			pipe.HSet(ctx, activeKey, booking.Phone, booking.ID)
			pipe.ZAdd(ctx, sessionKey(sessionBookingsKeyPrefix, sessionID), member)
			pipe.HSet(ctx, statsKey, statsFieldSeq, booking.Seq)

			if booking.Status == models.BookingStatusConfirmed {
				pipe.ZAdd(ctx, sessionKey(sessionConfirmedKeyPrefix, sessionID), member)
				pipe.HIncrBy(ctx, statsKey, statsFieldConfirmed, 1)
			} else {
				pipe.ZAdd(ctx, sessionKey(sessionWaitlistKeyPrefix, sessionID), member)
				pipe.HIncrBy(ctx, statsKey, statsFieldWaitlisted, 1)
			}
			return nil
		})
		if err != nil {
			return err
		}

		output = &CreateBookingOutput{
			Booking:          &booking,
			WaitlistPosition: position,
		}
		return nil
	}

	if err := r.watch(ctx, txf, activeKey, statsKey); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return output, nil
}

func (r *redisRepository) waitlistPosition(ctx context.Context, tx *redis.Tx, booking *models.Booking) (int, error) {
	rank, err := tx.ZRank(ctx, sessionKey(sessionWaitlistKeyPrefix, booking.SessionID), booking.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get waitlist position: %w", err)
	}
	return int(rank) + 1, nil
}

// CancelBooking moves an active booking to canceled and releases its seat or
// place in line. Two concurrent cancels of the same booking collide on the
// booking key; the loser sees ErrAlreadyCanceled.
func (r *redisRepository) CancelBooking(ctx context.Context, input *CancelBookingInput) (*CancelBookingOutput, error) {
	if input == nil || input.BookingID == "" {
		return nil, errors.New("input and booking ID cannot be empty")
	}

	var output *CancelBookingOutput

	txf := func(tx *redis.Tx) error {
		booking, err := r.getBooking(ctx, tx, input.BookingID)
		if err != nil {
			return err
		}

		if booking.Status == models.BookingStatusCanceled {
			return ErrAlreadyCanceled
		}

		previous := booking.Status
		canceledAt := input.CanceledAt
		booking.Status = models.BookingStatusCanceled
		booking.CanceledAt = &canceledAt
		booking.CanceledBy = input.CanceledBy
		booking.CancelReason = input.Reason

		bookingJSON, err := json.Marshal(booking)
		if err != nil {
			return fmt.Errorf("failed to marshal booking: %w", err)
		}

		sessionID := booking.SessionID
		statsKey := sessionKey(sessionStatsKeyPrefix, sessionID)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookingKey(booking.ID), bookingJSON, 0)
			pipe.HDel(ctx, sessionKey(sessionActiveKeyPrefix, sessionID), booking.Phone)

			if previous == models.BookingStatusConfirmed {
				pipe.ZRem(ctx, sessionKey(sessionConfirmedKeyPrefix, sessionID), booking.ID)
				pipe.HIncrBy(ctx, statsKey, statsFieldConfirmed, -1)
			} else {
				pipe.ZRem(ctx, sessionKey(sessionWaitlistKeyPrefix, sessionID), booking.ID)
				pipe.HIncrBy(ctx, statsKey, statsFieldWaitlisted, -1)
			}
			return nil
		})
		if err != nil {
			return err
		}

		output = &CancelBookingOutput{
			Booking:        booking,
			PreviousStatus: previous,
		}
		return nil
	}

	if err := r.watch(ctx, txf, bookingKey(input.BookingID)); err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrAlreadyCanceled) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	return output, nil
}

// PromoteNext re-reads seat usage under WATCH and confirms exactly the
// lowest-Seq waitlisted booking when a seat is free
func (r *redisRepository) PromoteNext(ctx context.Context, input *PromoteNextInput) (*PromoteNextOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionID := input.SessionID
	statsKey := sessionKey(sessionStatsKeyPrefix, sessionID)
	waitlistKey := sessionKey(sessionWaitlistKeyPrefix, sessionID)

	var output *PromoteNextOutput

	txf := func(tx *redis.Tx) error {
		output = &PromoteNextOutput{}

		stats, err := r.getStats(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if stats.Confirmed >= input.Capacity {
			return nil
		}

		head, err := tx.ZRange(ctx, waitlistKey, 0, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to read waitlist: %w", err)
		}
		if len(head) == 0 {
			return nil
		}

		if err := tx.Watch(ctx, bookingKey(head[0])).Err(); err != nil {
			return fmt.Errorf("failed to watch booking: %w", err)
		}

		booking, err := r.getBooking(ctx, tx, head[0])
		if err != nil {
			return err
		}

		if booking.Status != models.BookingStatusWaitlisted {
			return fmt.Errorf("waitlist head %s has status %s", booking.ID, booking.Status)
		}

		promotedAt := input.PromotedAt
		booking.Status = models.BookingStatusConfirmed
		booking.PromotedAt = &promotedAt

		bookingJSON, err := json.Marshal(booking)
		if err != nil {
			return fmt.Errorf("failed to marshal booking: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookingKey(booking.ID), bookingJSON, 0)
			pipe.ZRem(ctx, waitlistKey, booking.ID)
			pipe.ZAdd(ctx, sessionKey(sessionConfirmedKeyPrefix, sessionID), redis.Z{
				Score:  float64(booking.Seq),
				Member: booking.ID,
			})
			pipe.HIncrBy(ctx, statsKey, statsFieldConfirmed, 1)
			pipe.HIncrBy(ctx, statsKey, statsFieldWaitlisted, -1)
			return nil
		})
		if err != nil {
			return err
		}

		output.Promoted = booking
		return nil
	}

	if err := r.watch(ctx, txf, statsKey, waitlistKey); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to promote booking: %w", err)
	}

	return output, nil
}

// GetBooking retrieves a booking by ID from Redis
func (r *redisRepository) GetBooking(ctx context.Context, input *GetBookingInput) (*models.Booking, error) {
	if input == nil || input.BookingID == "" {
		return nil, errors.New("input and booking ID cannot be empty")
	}

	return r.getBooking(ctx, r.client, input.BookingID)
}

// GetActiveBooking retrieves the active booking for a phone in a session
func (r *redisRepository) GetActiveBooking(ctx context.Context, input *GetActiveBookingInput) (*models.Booking, error) {
	if input == nil || input.SessionID == "" || input.Phone == "" {
		return nil, errors.New("input, session ID and phone cannot be empty")
	}

	bookingID, err := r.client.HGet(ctx, sessionKey(sessionActiveKeyPrefix, input.SessionID), input.Phone).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get active booking: %w", err)
	}

	return r.getBooking(ctx, r.client, bookingID)
}

// ListSessionBookings lists every booking for a session ordered by Seq
func (r *redisRepository) ListSessionBookings(ctx context.Context, input *ListSessionBookingsInput) (*ListSessionBookingsOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	bookingIDs, err := r.client.ZRange(ctx, sessionKey(sessionBookingsKeyPrefix, input.SessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list booking IDs: %w", err)
	}

	if len(bookingIDs) == 0 {
		return &ListSessionBookingsOutput{
			Bookings: []*models.Booking{},
		}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(bookingIDs))
	for i, bookingID := range bookingIDs {
		cmds[i] = pipe.Get(ctx, bookingKey(bookingID))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(bookingIDs))
	for i, cmd := range cmds {
		bookingJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get booking %s: %w", bookingIDs[i], err)
		}

		var booking models.Booking
		if err := json.Unmarshal([]byte(bookingJSON), &booking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal booking %s: %w", bookingIDs[i], err)
		}
		bookings = append(bookings, &booking)
	}

	return &ListSessionBookingsOutput{
		Bookings: bookings,
	}, nil
}

// GetSessionStats reads the per-session aggregate
func (r *redisRepository) GetSessionStats(ctx context.Context, input *GetSessionStatsInput) (*SessionStats, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	return r.getStats(ctx, r.client, input.SessionID)
}
