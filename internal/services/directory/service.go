package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/pickup/internal/common/clock"
	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/models"
	friendRepo "github.com/KirkDiggler/pickup/internal/repositories/friend"
	"go.uber.org/zap"
)

const (
	defaultCountryCode     = "1"
	defaultPlaceholderName = "Friend"
)

// service implements the Service interface
type service struct {
	countryCode     string
	placeholderName string
	friendRepo      friendRepo.Repository
	clock           clock.Clock
	uuidGenerator   uuid.UUID
	logger          *zap.Logger
}

// New creates a new directory service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.FriendRepo == nil {
		return nil, ErrNilFriendRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	countryCode := strings.TrimPrefix(cfg.DefaultCountryCode, "+")
	if countryCode == "" {
		countryCode = defaultCountryCode
	}

	placeholder := cfg.PlaceholderName
	if placeholder == "" {
		placeholder = defaultPlaceholderName
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		countryCode:     countryCode,
		placeholderName: placeholder,
		friendRepo:      cfg.FriendRepo,
		clock:           cfg.Clock,
		uuidGenerator:   cfg.UUIDGenerator,
		logger:          logger,
	}, nil
}

// NormalizePhone converts raw input to E.164 with the configured country code
func (s *service) NormalizePhone(raw string) (string, error) {
	return NormalizePhone(raw, s.countryCode)
}

// Resolve finds or creates the friend for a phone
func (s *service) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	if input == nil {
		return nil, ErrInvalidPhone
	}

	phone, err := s.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetFriendByPhone(ctx, &friendRepo.GetFriendByPhoneInput{
		Phone: phone,
	})
	if err == nil {
		return &ResolveOutput{Friend: existing}, nil
	}
	if !errors.Is(err, friendRepo.ErrFriendNotFound) {
		return nil, fmt.Errorf("failed to look up friend: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = s.placeholderName
	}

	now := s.clock.Now()
	friend := &models.Friend{
		ID:        s.uuidGenerator.NewUUID(),
		Name:      name,
		Phone:     phone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.friendRepo.CreateFriend(ctx, &friendRepo.CreateFriendInput{
		Friend: friend,
	})
	if errors.Is(err, friendRepo.ErrPhoneTaken) {
		// Someone resolved the same phone first
		existing, err := s.friendRepo.GetFriendByPhone(ctx, &friendRepo.GetFriendByPhoneInput{
			Phone: phone,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to look up friend: %w", err)
		}
		return &ResolveOutput{Friend: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create friend: %w", err)
	}

	s.logger.Info("friend created",
		zap.String("friend_id", friend.ID),
		zap.String("phone", MaskPhone(phone)),
	)

	return &ResolveOutput{
		Friend:  friend,
		Created: true,
	}, nil
}

// Update changes a friend's name or active flag
func (s *service) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	if input == nil {
		return nil, ErrInvalidPhone
	}

	friend, err := s.GetFriendByPhone(ctx, &GetFriendByPhoneInput{
		Phone: input.Phone,
	})
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		friend.Name = name
	}
	if input.Active != nil {
		friend.Active = *input.Active
	}
	friend.UpdatedAt = s.clock.Now()

	if err := s.friendRepo.SaveFriend(ctx, &friendRepo.SaveFriendInput{
		Friend: friend,
	}); err != nil {
		return nil, fmt.Errorf("failed to save friend: %w", err)
	}

	return &UpdateOutput{
		Friend: friend,
	}, nil
}

// Import upserts each record independently
func (s *service) Import(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if input == nil {
		return &ImportOutput{}, nil
	}

	results := make([]ImportResult, len(input.Records))
	for i, record := range input.Records {
		friend, err := s.importRecord(ctx, record)
		if err != nil {
			s.logger.Warn("friend import record failed",
				zap.Int("row", i),
				zap.Error(err),
			)
			results[i] = ImportResult{Err: err}
			continue
		}
		results[i] = ImportResult{Friend: friend}
	}

	return &ImportOutput{
		Results: results,
	}, nil
}

func (s *service) importRecord(ctx context.Context, record ImportRecord) (*models.Friend, error) {
	resolved, err := s.Resolve(ctx, &ResolveInput{
		Phone: record.Phone,
		Name:  record.Name,
	})
	if err != nil {
		return nil, err
	}

	friend := resolved.Friend
	name := strings.TrimSpace(record.Name)
	if (name == "" || friend.Name == name) && friend.Active == record.Active {
		return friend, nil
	}

	active := record.Active
	updated, err := s.Update(ctx, &UpdateInput{
		Phone:  friend.Phone,
		Name:   name,
		Active: &active,
	})
	if err != nil {
		return nil, err
	}

	return updated.Friend, nil
}

// GetFriend retrieves a friend by ID
func (s *service) GetFriend(ctx context.Context, input *GetFriendInput) (*models.Friend, error) {
	if input == nil || input.FriendID == "" {
		return nil, ErrFriendNotFound
	}

	friend, err := s.friendRepo.GetFriend(ctx, &friendRepo.GetFriendInput{
		FriendID: input.FriendID,
	})
	if err != nil {
		if errors.Is(err, friendRepo.ErrFriendNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	return friend, nil
}

// GetFriendByPhone retrieves a friend by raw or canonical phone
func (s *service) GetFriendByPhone(ctx context.Context, input *GetFriendByPhoneInput) (*models.Friend, error) {
	if input == nil {
		return nil, ErrInvalidPhone
	}

	phone, err := s.NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	friend, err := s.friendRepo.GetFriendByPhone(ctx, &friendRepo.GetFriendByPhoneInput{
		Phone: phone,
	})
	if err != nil {
		if errors.Is(err, friendRepo.ErrFriendNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	return friend, nil
}

// ListActive lists friends who receive scheduled invites
func (s *service) ListActive(ctx context.Context) ([]*models.Friend, error) {
	out, err := s.friendRepo.ListActiveFriends(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active friends: %w", err)
	}

	return out.Friends, nil
}
